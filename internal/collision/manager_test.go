package collision_test

import (
	"math/rand"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"collide3d/internal/collision"
	"collide3d/internal/engine"
	"collide3d/internal/physics"
)

func vec(x, y, z float32) rl.Vector3 {
	return rl.Vector3{X: x, Y: y, Z: z}
}

// held keeps test bodies reachable; the Manager only holds weak references.
var held []*engine.Body

func newBody(m *collision.Manager) *engine.Body {
	GinkgoHelper()
	b, err := engine.NewBody(m)
	Expect(err).NotTo(HaveOccurred())
	held = append(held, b)
	return b
}

func newSphere(m *collision.Manager, pos rl.Vector3, r float32) *engine.Body {
	GinkgoHelper()
	return newBody(m).SetShape(physics.ShapeSphere).SetPosition(pos).SetRadius(r)
}

func newBox(m *collision.Manager, pos, half rl.Vector3) *engine.Body {
	GinkgoHelper()
	return newBody(m).SetShape(physics.ShapeBox).SetPosition(pos).SetHalfSize(half)
}

// recorder collects "kind:self->other" entries in call order.
type recorder struct {
	events []string
	names  map[string]string
}

func newRecorder() *recorder {
	return &recorder{names: make(map[string]string)}
}

func (r *recorder) watch(name string, b *engine.Body) {
	r.names[b.ID()] = name
	for _, kind := range []engine.EventKind{engine.EventTrigger, engine.EventStay, engine.EventExit} {
		kind := kind
		b.AddCallback(kind, func(other *engine.Body) {
			r.events = append(r.events, kind.String()+":"+name+"->"+r.names[other.ID()])
		})
	}
}

func (r *recorder) take() []string {
	out := r.events
	r.events = nil
	return out
}

func frame(m *collision.Manager) {
	m.Detect()
	m.ProcessEvent()
}

var _ = Describe("Manager", func() {
	var m *collision.Manager

	BeforeEach(func() {
		held = nil
		m = collision.New(collision.WithWorkers(4), collision.WithLogger(GinkgoLogr))
		DeferCleanup(m.Close)
	})

	Describe("registry", func() {
		It("rejects nil bodies", func() {
			Expect(m.Register(nil)).To(BeFalse())
			Expect(m.Unregister(nil)).To(BeFalse())
		})

		It("registers bodies on construction", func() {
			a := newSphere(m, vec(0, 0, 0), 1)
			got, ok := m.Get(a.ID())
			Expect(ok).To(BeTrue())
			Expect(got).To(BeIdenticalTo(a))
			Expect(a.Registered()).To(BeTrue())
			Expect(m.Len()).To(Equal(1))
		})

		It("overwrites on re-registration", func() {
			a := newSphere(m, vec(0, 0, 0), 1)
			Expect(m.Register(a)).To(BeTrue())
			Expect(m.Len()).To(Equal(1))
		})

		It("forgets destroyed bodies", func() {
			a := newSphere(m, vec(0, 0, 0), 1)
			a.Destroy()
			_, ok := m.Get(a.ID())
			Expect(ok).To(BeFalse())
			Expect(m.Len()).To(Equal(0))
			Expect(engine.RefTo(a).Get(m)).To(BeNil())
		})

		It("lists bodies in id order", func() {
			for i := 0; i < 5; i++ {
				newSphere(m, vec(float32(i), 0, 0), 1)
			}
			bodies := m.Bodies()
			Expect(bodies).To(HaveLen(5))
			for i := 1; i < len(bodies); i++ {
				Expect(bodies[i-1].ID() < bodies[i].ID()).To(BeTrue())
			}
		})

		It("refuses registrations once closed", func() {
			a := newSphere(m, vec(0, 0, 0), 1)
			m.Close()

			_, err := engine.NewBody(m)
			Expect(err).To(MatchError(engine.ErrRegisterFailed))
			Expect(m.Unregister(a)).To(BeFalse())
			// Logged, not fatal
			a.Destroy()
			Expect(a.Alive()).To(BeFalse())
		})

		It("drops bodies the application no longer holds", func() {
			func() {
				b, err := engine.NewBody(m)
				Expect(err).NotTo(HaveOccurred())
				b.SetShape(physics.ShapeSphere).SetRadius(1)
			}()
			Eventually(func() int {
				runtime.GC()
				m.Detect()
				return len(m.Bodies())
			}).Should(Equal(0))
		})

		It("purges pairs of an unregistered body", func() {
			a := newSphere(m, vec(0, 0, 0), 1)
			b := newSphere(m, vec(1, 0, 0), 1)
			m.Detect()
			m.Detect()
			Expect(m.Pairs()).To(ConsistOf(collision.MakePair(a.ID(), b.ID())))
			Expect(m.PreviousPairs()).To(HaveLen(1))

			Expect(m.Unregister(b)).To(BeTrue())
			Expect(m.Pairs()).To(BeEmpty())
			Expect(m.PreviousPairs()).To(BeEmpty())
		})
	})

	Describe("Detect", func() {
		It("pairs overlapping shapes of every kind", func() {
			s1 := newSphere(m, vec(0, 0, 0), 1)
			s2 := newSphere(m, vec(1.5, 0, 0), 1)
			bx := newBox(m, vec(-1.5, 1.8, 0), vec(1, 1, 1))
			far := newSphere(m, vec(50, 0, 0), 1)

			m.Detect()
			Expect(m.Pairs()).To(ConsistOf(
				collision.MakePair(s1.ID(), s2.ID()),
				collision.MakePair(s1.ID(), bx.ID()),
			))
			for _, p := range m.Pairs() {
				Expect(p.Has(far.ID())).To(BeFalse())
			}
		})

		It("skips disabled and shapeless bodies", func() {
			a := newSphere(m, vec(0, 0, 0), 1)
			newSphere(m, vec(0.5, 0, 0), 1).Disable()
			none := newBody(m)
			none.SetPosition(vec(0, 0, 0)).SetRadius(5)

			m.Detect()
			Expect(m.Pairs()).To(BeEmpty())
			Expect(a.Enabled()).To(BeTrue())
		})

		It("honors ignore masks in both directions", func() {
			const player, enemy = 1 << 0, 1 << 1
			a := newSphere(m, vec(0, 0, 0), 1).AddAttribute(player)
			b := newSphere(m, vec(0.5, 0, 0), 1).AddIgnore(player)
			c := newSphere(m, vec(-0.5, 0, 0), 1).AddAttribute(enemy)
			a.AddIgnore(enemy)

			m.Detect()
			Expect(m.Pairs()).To(ConsistOf(collision.MakePair(b.ID(), c.ID())))
		})

		It("is idempotent without changes", func() {
			for i := 0; i < 10; i++ {
				newSphere(m, vec(float32(i), 0, 0), 0.6)
			}
			m.Detect()
			first := m.Pairs()
			m.Detect()
			Expect(m.Pairs()).To(Equal(first))
			Expect(m.PreviousPairs()).To(Equal(first))
			Expect(first).To(HaveLen(9))
		})

		It("applies the distance cutoff only when configured", func() {
			cut := collision.New(collision.WithWorkers(2), collision.WithDistanceCutoff(5))
			DeferCleanup(cut.Close)
			newSphere(cut, vec(0, 0, 0), 10)
			newSphere(cut, vec(15, 0, 0), 10)
			cut.Detect()
			Expect(cut.Pairs()).To(BeEmpty())

			newSphere(m, vec(0, 0, 0), 10)
			newSphere(m, vec(15, 0, 0), 10)
			m.Detect()
			Expect(m.Pairs()).To(HaveLen(1))
		})

		It("still runs after the pool is closed", func() {
			newSphere(m, vec(0, 0, 0), 1)
			newSphere(m, vec(1, 0, 0), 1)
			m.Close()
			m.Detect()
			Expect(m.Pairs()).To(HaveLen(1))
		})

		DescribeTable("finds the same pairs with any worker count",
			func(workers int) {
				rng := rand.New(rand.NewSource(7))
				type placement struct {
					pos rl.Vector3
					r   float32
					box bool
				}
				placements := make([]placement, 150)
				for i := range placements {
					placements[i] = placement{
						pos: vec(rng.Float32()*20, rng.Float32()*20, rng.Float32()*20),
						r:   0.5 + rng.Float32()*1.5,
						box: i%3 == 0,
					}
				}

				index := func(mgr *collision.Manager) map[[2]int]bool {
					ids := make(map[string]int)
					for i, s := range placements {
						var b *engine.Body
						if s.box {
							b = newBox(mgr, s.pos, vec(s.r, s.r, s.r))
						} else {
							b = newSphere(mgr, s.pos, s.r)
						}
						ids[b.ID()] = i
					}
					mgr.Detect()
					out := make(map[[2]int]bool)
					for _, p := range mgr.Pairs() {
						i, j := ids[p.A], ids[p.B]
						if i > j {
							i, j = j, i
						}
						out[[2]int{i, j}] = true
					}
					return out
				}

				serial := collision.New(collision.WithWorkers(1))
				DeferCleanup(serial.Close)
				parallel := collision.New(collision.WithWorkers(workers))
				DeferCleanup(parallel.Close)

				want := index(serial)
				Expect(want).NotTo(BeEmpty())
				Expect(index(parallel)).To(Equal(want))
			},
			Entry("2 workers", 2),
			Entry("3 workers", 3),
			Entry("8 workers", 8),
			Entry("more workers than bodies", 400),
		)
	})

	Describe("ProcessEvent", func() {
		var (
			rec  *recorder
			a, b *engine.Body
		)

		BeforeEach(func() {
			rec = newRecorder()
			a = newSphere(m, vec(0, 0, 0), 1)
			b = newSphere(m, vec(10, 0, 0), 1)
			rec.watch("a", a)
			rec.watch("b", b)
		})

		It("fires Trigger, Stay and Exit across frames", func() {
			frame(m)
			Expect(rec.take()).To(BeEmpty())

			b.SetPosition(vec(1, 0, 0))
			frame(m)
			Expect(rec.take()).To(ConsistOf("trigger:a->b", "trigger:b->a"))

			frame(m)
			Expect(rec.take()).To(ConsistOf("stay:a->b", "stay:b->a"))

			b.SetPosition(vec(10, 0, 0))
			frame(m)
			Expect(rec.take()).To(ConsistOf("exit:a->b", "exit:b->a"))

			frame(m)
			Expect(rec.take()).To(BeEmpty())
		})

		It("notifies the smaller id first", func() {
			b.SetPosition(vec(1, 0, 0))
			frame(m)
			first, second := "trigger:a->b", "trigger:b->a"
			if b.ID() < a.ID() {
				first, second = second, first
			}
			Expect(rec.take()).To(Equal([]string{first, second}))
		})

		It("accepts registrations from inside an Exit callback", func() {
			var spawned *engine.Body
			a.SetCallback(engine.EventExit, func(other *engine.Body) {
				spawned = newSphere(m, vec(0, 0.5, 0), 1)
				_, visible := m.Get(spawned.ID())
				Expect(visible).To(BeFalse())
			})

			b.SetPosition(vec(1, 0, 0))
			frame(m)
			b.SetPosition(vec(10, 0, 0))
			frame(m)

			Expect(spawned).NotTo(BeNil())
			_, ok := m.Get(spawned.ID())
			Expect(ok).To(BeTrue())
			Expect(m.Len()).To(Equal(3))

			m.Detect()
			Expect(m.Pairs()).To(ContainElement(collision.MakePair(a.ID(), spawned.ID())))
		})

		It("defers removals requested by callbacks and skips stale pairs", func() {
			c := newSphere(m, vec(0, 0.5, 0), 1)
			rec.watch("c", c)
			destroyedAt := -1
			a.SetCallback(engine.EventTrigger, func(other *engine.Body) {
				if c.Alive() {
					c.Destroy()
					destroyedAt = len(rec.events)
					Expect(m.Len()).To(Equal(2))
				}
			})

			b.SetPosition(vec(1, 0, 0))
			m.Detect()
			Expect(m.Pairs()).To(HaveLen(3))
			m.ProcessEvent()

			Expect(destroyedAt).To(BeNumerically(">=", 0))
			for _, e := range rec.take()[destroyedAt:] {
				Expect(e).NotTo(HaveSuffix("->c"))
				Expect(e).NotTo(ContainSubstring(":c->"))
			}
			for _, p := range m.Pairs() {
				Expect(p.Has(c.ID())).To(BeFalse())
			}

			frame(m)
			Expect(rec.take()).To(ConsistOf("stay:a->b", "stay:b->a"))
		})

		It("keeps dispatching after a callback panics", func() {
			a.SetCallback(engine.EventTrigger, func(other *engine.Body) {
				panic("boom")
			})

			b.SetPosition(vec(1, 0, 0))
			frame(m)
			Expect(rec.take()).To(ConsistOf("trigger:b->a"))

			frame(m)
			Expect(rec.take()).To(ConsistOf("stay:a->b", "stay:b->a"))
		})
	})

	Describe("RayCast", func() {
		It("returns the nearest sphere", func() {
			near := newSphere(m, vec(0, 0, 5), 1)
			newSphere(m, vec(0, 0, 10), 1)

			hit := m.RayCast(engine.NewRay(vec(0, 0, 0), vec(0, 0, 1), 100))
			Expect(hit.Hit()).To(BeTrue())
			Expect(hit.ID).To(Equal(near.ID()))
			Expect(hit.Distance).To(BeNumerically("~", 4, 1e-4))
			Expect(hit.Point.Z).To(BeNumerically("~", 4, 1e-4))
		})

		It("hits boxes and orders every hit by distance", func() {
			bx := newBox(m, vec(0, 0, 3), vec(1, 1, 1))
			sp := newSphere(m, vec(0, 0, 8), 1)

			r := engine.NewRay(vec(0, 0, 0), vec(0, 0, 1), 20)
			hits := m.RayCastAll(r)
			Expect(hits).To(HaveLen(2))
			Expect(hits[0].ID).To(Equal(bx.ID()))
			Expect(hits[0].Distance).To(BeNumerically("~", 2, 1e-4))
			Expect(hits[1].ID).To(Equal(sp.ID()))

			next := m.NextHit(r, hits[0].Distance)
			Expect(next.ID).To(Equal(sp.ID()))
			Expect(m.NextHit(r, hits[1].Distance).Hit()).To(BeFalse())
		})

		It("returns a sentinel at the end of the ray on a miss", func() {
			newSphere(m, vec(5, 0, 0), 1)

			hit := m.RayCast(engine.NewRay(vec(0, 0, 0), vec(0, 1, 0), 10))
			Expect(hit.Hit()).To(BeFalse())
			Expect(hit.Distance).To(BeNumerically("==", 10))
			Expect(hit.Point).To(Equal(vec(0, 10, 0)))
		})

		It("stops at the ray length", func() {
			newSphere(m, vec(0, 0, 5), 1)
			Expect(m.RayCast(engine.NewRay(vec(0, 0, 0), vec(0, 0, 1), 3)).Hit()).To(BeFalse())
		})

		It("filters by masks and skips disabled bodies", func() {
			const wall = 1 << 2
			newBox(m, vec(0, 0, 2), vec(1, 1, 0.5)).AddAttribute(wall)
			target := newSphere(m, vec(0, 0, 6), 1)
			newSphere(m, vec(0, 0, 4), 0.5).Disable()

			hit := m.RayCast(engine.NewRay(vec(0, 0, 0), vec(0, 0, 1), 10).AddIgnore(wall))
			Expect(hit.ID).To(Equal(target.ID()))
		})

		It("treats invalid rays as misses", func() {
			newSphere(m, vec(0, 0, 0), 1)

			Expect(m.RayCast(nil)).To(Equal(collision.RayHit{}))
			Expect(m.RayCast(engine.NewRay(vec(0, 0, 0), vec(0, 0, 0), 10)).Hit()).To(BeFalse())
			Expect(m.RayCastAll(engine.NewRay(vec(0, 0, 0), vec(1, 0, 0), -1))).To(BeEmpty())
		})
	})
})
