package broadphase

import (
	"math/rand"
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"spheretree/internal/physics"
)

func TestIndexPutRemove(t *testing.T) {
	x := NewIndex(t.Name(), DefaultPadding)

	a, err := x.Add(rl.Vector3{}, 1)
	require.NoError(t, err)
	b, err := x.Add(rl.Vector3{X: 5}, 1)
	require.NoError(t, err)
	require.Equal(t, 2, x.Len())
	require.NoError(t, x.Validate())

	s, ok := x.Sphere(b)
	require.True(t, ok)
	require.Equal(t, physics.NewSphere(rl.Vector3{X: 5}, 1), s)

	require.NoError(t, x.Remove(a))
	require.Equal(t, 1, x.Len())
	_, ok = x.Sphere(a)
	require.False(t, ok)
	require.NoError(t, x.Validate())

	require.Equal(t, float64(1), testutil.ToFloat64(indexObjects.With(prometheus.Labels{indexLabel: t.Name()})))
}

func TestIndexRejectsUnknownIDs(t *testing.T) {
	x := NewIndex(t.Name(), 0)

	require.Error(t, x.Remove(uuid.New()))
	require.Error(t, x.Move(uuid.New(), rl.Vector3{}, 1))
}

func TestIndexRejectsDuplicatePut(t *testing.T) {
	x := NewIndex(t.Name(), 0)
	id := uuid.New()

	require.NoError(t, x.Put(id, rl.Vector3{}, 1))
	require.Error(t, x.Put(id, rl.Vector3{X: 1}, 1))
	require.Equal(t, 1, x.Len())
}

func TestIndexRejectsInvalidSpheres(t *testing.T) {
	x := NewIndex(t.Name(), 0)

	tests := []struct {
		name   string
		center rl.Vector3
		radius float32
	}{
		{name: "negative radius", radius: -1},
		{name: "nan radius", radius: math32.NaN()},
		{name: "infinite radius", radius: math32.Inf(1)},
		{name: "nan center", center: rl.Vector3{Y: math32.NaN()}, radius: 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := x.Add(test.center, test.radius)
			require.Error(t, err)
		})
	}
	require.Zero(t, x.Len())

	id, err := x.Add(rl.Vector3{}, 1)
	require.NoError(t, err)
	require.Error(t, x.Move(id, rl.Vector3{}, -2))

	s, _ := x.Sphere(id)
	require.Equal(t, float32(1), s.Radius)
}

func TestIndexMoveCountsReinserts(t *testing.T) {
	x := NewIndex(t.Name(), 0.5)
	reinserts := indexReinserts.With(prometheus.Labels{indexLabel: t.Name()})

	a, err := x.Add(rl.Vector3{}, 1)
	require.NoError(t, err)
	_, err = x.Add(rl.Vector3{X: 3}, 1)
	require.NoError(t, err)
	_, err = x.Add(rl.Vector3{X: 1}, 1)
	require.NoError(t, err)

	// Stays inside the padded parent.
	require.NoError(t, x.Move(a, rl.Vector3{X: 0.1}, 1))
	require.Equal(t, float64(0), testutil.ToFloat64(reinserts))

	require.NoError(t, x.Move(a, rl.Vector3{X: 100}, 1))
	require.Equal(t, float64(1), testutil.ToFloat64(reinserts))
	require.Equal(t, uint64(1), x.Stats().Reinserts)
	require.NoError(t, x.Validate())

	s, _ := x.Sphere(a)
	require.Equal(t, rl.Vector3{X: 100}, s.Center)
}

func TestIndexCandidatePairsMatchBruteForce(t *testing.T) {
	x := NewIndex(t.Name(), DefaultPadding)
	rnd := rand.New(rand.NewSource(7))

	spheres := make(map[uuid.UUID]physics.Sphere)
	for i := 0; i < 300; i++ {
		center := rl.Vector3{
			X: rnd.Float32()*40 - 20,
			Y: rnd.Float32()*40 - 20,
			Z: rnd.Float32()*40 - 20,
		}
		radius := 0.5 + rnd.Float32()
		id, err := x.Add(center, radius)
		require.NoError(t, err)
		spheres[id] = physics.NewSphere(center, radius)
	}

	// Move a third of the objects, some far enough to restructure the tree.
	n := 0
	for id, s := range spheres {
		if n++; n%3 != 0 {
			continue
		}
		s.Center.X += rnd.Float32()*10 - 5
		require.NoError(t, x.Move(id, s.Center, s.Radius))
		spheres[id] = s
	}
	require.NoError(t, x.Validate())

	var want []Pair
	for a, sa := range spheres {
		for b, sb := range spheres {
			if compareIDs(a, b) < 0 && sa.Overlaps(sb) {
				want = append(want, Pair{A: a, B: b})
			}
		}
	}

	got := x.CandidatePairs()
	require.ElementsMatch(t, want, got)
	for i := 1; i < len(got); i++ {
		require.True(t, compareIDs(got[i-1].A, got[i].A) <= 0)
	}
}

func TestIndexPick(t *testing.T) {
	x := NewIndex(t.Name(), DefaultPadding)

	near, err := x.Add(rl.Vector3{Z: -5}, 1)
	require.NoError(t, err)
	_, err = x.Add(rl.Vector3{Z: -15}, 1)
	require.NoError(t, err)
	_, err = x.Add(rl.Vector3{X: 10, Z: -5}, 1)
	require.NoError(t, err)

	hit, ok := x.Pick(physics.NewRay(rl.Vector3{}, rl.Vector3{Z: -1}))
	require.True(t, ok)
	require.Equal(t, near, hit.Payload)
	require.InDelta(t, 4, hit.Distance, 1e-4)

	hits := x.Raycast(physics.NewRay(rl.Vector3{}, rl.Vector3{Z: -1}), true)
	require.Len(t, hits, 2)
	require.Equal(t, near, hits[0].Payload)

	_, ok = x.Pick(physics.NewRay(rl.Vector3{}, rl.Vector3{Y: 1}))
	require.False(t, ok)
}

func TestIndexOverlapQueries(t *testing.T) {
	x := NewIndex(t.Name(), DefaultPadding)

	a, err := x.Add(rl.Vector3{}, 1)
	require.NoError(t, err)
	b, err := x.Add(rl.Vector3{X: 4}, 1)
	require.NoError(t, err)

	box := physics.NewAABB(rl.Vector3{X: 2.5, Y: -1, Z: -1}, rl.Vector3{X: 6, Y: 1, Z: 1})
	require.Equal(t, []uuid.UUID{b}, x.OverlapBox(box))
	require.ElementsMatch(t, []uuid.UUID{a, b}, x.OverlapSphere(physics.NewSphere(rl.Vector3{X: 2}, 1.5)))
}

func TestIndexSetPaddingKeepsObjects(t *testing.T) {
	x := NewIndex(t.Name(), 0)

	var ids []uuid.UUID
	for i := 0; i < 20; i++ {
		id, err := x.Add(rl.Vector3{X: float32(i) * 2}, 0.5)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	pairs := x.CandidatePairs()

	x.SetPadding(2)
	require.Equal(t, float32(2), x.Padding())
	require.Equal(t, 20, x.Len())
	require.NoError(t, x.Validate())
	require.Equal(t, pairs, x.CandidatePairs())

	for _, id := range ids {
		_, ok := x.Sphere(id)
		require.True(t, ok)
	}
	require.NoError(t, x.Move(ids[3], rl.Vector3{Y: 50}, 0.5))
	require.NoError(t, x.Remove(ids[4]))
	require.NoError(t, x.Validate())
}

func TestIndexClear(t *testing.T) {
	x := NewIndex(t.Name(), DefaultPadding)

	id, err := x.Add(rl.Vector3{}, 1)
	require.NoError(t, err)
	x.Clear()

	require.Zero(t, x.Len())
	require.Empty(t, x.CandidatePairs())
	require.Error(t, x.Remove(id))
	require.NoError(t, x.Validate())

	// Ids can be reused after a clear.
	require.NoError(t, x.Put(id, rl.Vector3{}, 1))
	require.Equal(t, 1, x.Len())
}
