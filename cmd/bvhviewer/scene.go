package main

import (
	"math/rand"

	"github.com/aukilabs/go-tooling/pkg/errors"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"spheretree/internal/broadphase"
	"spheretree/internal/physics"
)

// ball is a sphere bouncing inside the scene bounds.
type ball struct {
	id       uuid.UUID
	sphere   physics.Sphere
	velocity rl.Vector3
	color    rl.Color
}

// scene owns the balls and keeps the broad-phase index in sync with them.
type scene struct {
	bounds physics.AABB
	index  *broadphase.Index
	balls  map[uuid.UUID]*ball
	rnd    *rand.Rand

	// Objects touching at least one other object on the last step.
	touching map[uuid.UUID]bool
	pairs    int
}

func newScene(halfSize, padding float32, seed int64) *scene {
	return &scene{
		bounds:   physics.NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: halfSize * 2, Y: halfSize * 2, Z: halfSize * 2}),
		index:    broadphase.NewIndex("viewer", padding),
		balls:    make(map[uuid.UUID]*ball),
		rnd:      rand.New(rand.NewSource(seed)),
		touching: make(map[uuid.UUID]bool),
	}
}

// spawn adds n balls at random positions.
func (s *scene) spawn(n int) error {
	size := s.bounds.Size()
	for i := 0; i < n; i++ {
		radius := 0.3 + s.rnd.Float32()*0.7
		center := rl.Vector3{
			X: s.bounds.Min.X + radius + s.rnd.Float32()*(size.X-2*radius),
			Y: s.bounds.Min.Y + radius + s.rnd.Float32()*(size.Y-2*radius),
			Z: s.bounds.Min.Z + radius + s.rnd.Float32()*(size.Z-2*radius),
		}

		id, err := s.index.Add(center, radius)
		if err != nil {
			return errors.New("spawning ball failed").Wrap(err)
		}
		s.balls[id] = &ball{
			id:     id,
			sphere: physics.NewSphere(center, radius),
			velocity: rl.Vector3{
				X: s.rnd.Float32()*4 - 2,
				Y: s.rnd.Float32()*4 - 2,
				Z: s.rnd.Float32()*4 - 2,
			},
			color: rl.NewColor(uint8(80+s.rnd.Intn(175)), uint8(80+s.rnd.Intn(175)), uint8(80+s.rnd.Intn(175)), 255),
		}
	}
	return nil
}

func (s *scene) remove(id uuid.UUID) error {
	if err := s.index.Remove(id); err != nil {
		return err
	}
	delete(s.balls, id)
	delete(s.touching, id)
	return nil
}

func (s *scene) clear() {
	s.index.Clear()
	clear(s.balls)
	clear(s.touching)
	s.pairs = 0
}

// step advances every ball, bouncing off the bounds, then refreshes the
// overlap state from the index.
func (s *scene) step(dt float32) error {
	for _, b := range s.balls {
		c := rl.Vector3Add(b.sphere.Center, rl.Vector3Scale(b.velocity, dt))
		c.X, b.velocity.X = bounce(c.X, b.velocity.X, s.bounds.Min.X+b.sphere.Radius, s.bounds.Max.X-b.sphere.Radius)
		c.Y, b.velocity.Y = bounce(c.Y, b.velocity.Y, s.bounds.Min.Y+b.sphere.Radius, s.bounds.Max.Y-b.sphere.Radius)
		c.Z, b.velocity.Z = bounce(c.Z, b.velocity.Z, s.bounds.Min.Z+b.sphere.Radius, s.bounds.Max.Z-b.sphere.Radius)
		b.sphere.Center = c

		if err := s.index.Move(b.id, c, b.sphere.Radius); err != nil {
			return err
		}
	}

	clear(s.touching)
	pairs := s.index.CandidatePairs()
	for _, p := range pairs {
		s.touching[p.A] = true
		s.touching[p.B] = true
	}
	s.pairs = len(pairs)
	return nil
}

func bounce(pos, vel, lo, hi float32) (float32, float32) {
	if pos < lo {
		return lo, -vel
	}
	if pos > hi {
		return hi, -vel
	}
	return pos, vel
}

// pick returns the ball nearest along ray.
func (s *scene) pick(ray physics.Ray) (*ball, bool) {
	hit, ok := s.index.Pick(ray)
	if !ok {
		return nil, false
	}
	b, ok := s.balls[hit.Payload]
	return b, ok
}
