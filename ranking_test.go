package inject

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var (
	rankAnimal = NewBase("example.com/zoo.Animal", 0)
	rankCat    = NewBase("example.com/zoo.Cat", 0, rankAnimal.Raw())
	rankLion   = NewBase("example.com/zoo.Lion", 0, rankCat.Raw())
	rankDog    = NewBase("example.com/zoo.Dog", 0, rankAnimal.Raw())
	rankCage   = NewBase("example.com/zoo.Cage", 1)
	rankPen    = NewBase("example.com/zoo.Pen", 1, rankCage.Of(Var(0)))

	rankTypes = []Type{
		rankAnimal.Raw(),
		rankCat.Raw(),
		rankLion.Raw(),
		rankDog.Raw(),
		rankCage.Raw(),
		rankCage.Of(rankAnimal.Raw()),
		rankCage.Of(rankCat.Raw()),
		rankCage.Of(rankCat.Raw().AsUpperBound()),
		rankPen.Of(rankLion.Raw()),
		rankPen.Raw(),
		ArrayOf(rankCat.Raw()),
		ArrayOf(rankAnimal.Raw()),
	}

	rankNames = []Name{DefaultName, AnyName, "keeper", "keeper.day", "keeper.*", "k*", "vet"}

	rankTargets = []Target{
		Everywhere,
		Into(InstanceOf(rankCage.Raw())),
		Into(InstanceOf(rankPen.Raw())).Within(NamedInstance("keeper", rankDog.Raw())),
		Everywhere.In("example.com/zoo"),
		Everywhere.In("example.com/..."),
		Into(AnyOf(rankCat.Raw())).In("example.com/zoo", "example.com/farm"),
	}
)

func genType() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		return gopter.NewGenResult(rankTypes[genParams.Rng.Intn(len(rankTypes))], gopter.NoShrinker)
	}
}

func genBinding() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		rng := genParams.Rng
		b := Binding{
			Resource: Resource{
				Instance: Instance{
					Name: rankNames[rng.Intn(len(rankNames))],
					Type: rankTypes[rng.Intn(len(rankTypes))],
				},
				Target: rankTargets[rng.Intn(len(rankTargets))],
			},
			Source: Source{Kind: DeclarationKind(rng.Intn(4))},
		}
		return gopter.NewGenResult(b, gopter.NoShrinker)
	}
}

// genBindings generates up to eight bindings with pairwise distinct resource and kind.
func genBindings() gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		n := genParams.Rng.Intn(8) + 1
		seen := make(map[string]bool)
		var out []Binding
		for i := 0; i < n*4 && len(out) < n; i++ {
			b := genBinding()(genParams).Result.(Binding)
			k := b.Resource.key() + b.Source.Kind.String()
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, b)
		}
		return gopter.NewGenResult(out, gopter.NoShrinker)
	}
}

func sign(n int) int {
	return compareInt(n, 0)
}

func TestRanking_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("comparator is antisymmetric", prop.ForAll(
		func(a, b Binding) bool {
			return sign(compareBindings(a, b)) == -sign(compareBindings(b, a))
		},
		genBinding(), genBinding(),
	))

	properties.Property("only clashing bindings tie", prop.ForAll(
		func(a, b Binding) bool {
			tie := compareBindings(a, b) == 0
			clash := a.Resource.Equal(b.Resource) && a.Source.Kind == b.Source.Kind
			return tie == clash
		},
		genBinding(), genBinding(),
	))

	properties.Property("comparator is transitive", prop.ForAll(
		func(a, b, c Binding) bool {
			if compareBindings(a, b) < 0 && compareBindings(b, c) < 0 {
				return compareBindings(a, c) < 0
			}
			return true
		},
		genBinding(), genBinding(), genBinding(),
	))

	properties.Property("ranking ignores declaration order", prop.ForAll(
		func(bindings []Binding, seed int64) bool {
			sorted := slices.Clone(bindings)
			slices.SortFunc(sorted, compareBindings)

			shuffled := slices.Clone(bindings)
			rand.New(rand.NewSource(seed)).Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			slices.SortFunc(shuffled, compareBindings)

			for i := range sorted {
				if !sorted[i].Resource.Equal(shuffled[i].Resource) || sorted[i].Source.Kind != shuffled[i].Source.Kind {
					return false
				}
			}
			return true
		},
		genBindings(), gopter.Gen(func(p *gopter.GenParameters) *gopter.GenResult {
			return gopter.NewGenResult(p.Rng.Int63(), gopter.NoShrinker)
		}),
	))

	properties.Property("subtypes rank before their supertypes", prop.ForAll(
		func(a, b Type) bool {
			if a.base != b.base && a.MoreQualifiedThan(b) {
				return compareTypes(a, b) < 0
			}
			return true
		},
		genType(), genType(),
	))

	properties.Property("more qualified is irreflexive and asymmetric", prop.ForAll(
		func(a, b Type) bool {
			return !a.MoreQualifiedThan(a) && !(a.MoreQualifiedThan(b) && b.MoreQualifiedThan(a))
		},
		genType(), genType(),
	))

	properties.Property("only compatible types are comparable", prop.ForAll(
		func(a, b Type) bool {
			if !a.IsAssignableTo(b) && !b.IsAssignableTo(a) {
				return !a.MoreQualifiedThan(b) && !b.MoreQualifiedThan(a)
			}
			return true
		},
		genType(), genType(),
	))

	properties.TestingRun(t)
}

func TestRanking_Order(t *testing.T) {
	t.Parallel()

	cat := rankCat.Raw()
	bind := func(name Name, typ Type, target Target, kind DeclarationKind) Binding {
		return Binding{
			Resource: Resource{Instance: Instance{Name: name, Type: typ}, Target: target},
			Source:   Source{Kind: kind},
		}
	}

	want := []Binding{
		bind(DefaultName, cat, Into(InstanceOf(rankPen.Raw())).Within(InstanceOf(rankDog.Raw())), Explicit),
		bind(DefaultName, cat, Into(InstanceOf(rankPen.Raw())), Explicit),
		bind(DefaultName, cat, Everywhere.In("example.com/zoo"), Explicit),
		bind(DefaultName, rankLion.Raw(), Everywhere, Explicit),
		bind(DefaultName, cat, Everywhere, Explicit),
		bind(DefaultName, cat, Everywhere, Auto),
		bind(DefaultName, cat, Everywhere, Default),
		bind("keeper.day", cat, Everywhere, Explicit),
		bind("keeper.*", cat, Everywhere, Explicit),
		bind("keeper", cat, Everywhere, Explicit),
		bind(AnyName, cat, Everywhere, Explicit),
	}

	got := slices.Clone(want)
	rand.New(rand.NewSource(7)).Shuffle(len(got), func(i, j int) { got[i], got[j] = got[j], got[i] })
	slices.SortFunc(got, compareBindings)

	for i := range want {
		assert.True(t, want[i].Resource.Equal(got[i].Resource) && want[i].Source.Kind == got[i].Source.Kind,
			"position %d: want %s, got %s", i, want[i], got[i])
	}
}
