// Package scene drives a collision Manager from a config: it spawns bodies,
// moves them every frame, runs Detect and ProcessEvent, and records what happened.
package scene

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-logr/logr"

	"collide3d/internal/collision"
	"collide3d/internal/config"
	"collide3d/internal/engine"
	"collide3d/internal/physics"
)

// Actor is the owner of one body: a name and a constant velocity.
type Actor struct {
	Name     string
	Body     *engine.Body
	Velocity rl.Vector3
	Consume  bool

	Triggers int
	Stays    int
	Exits    int
}

// Event is one callback invocation: Self was notified about Other.
type Event struct {
	Frame int
	Kind  engine.EventKind
	Self  engine.BodyRef
	Other engine.BodyRef
}

// FrameStats summarizes one Step. Event counts are per notified body,
// so a new overlapping pair adds two triggers.
type FrameStats struct {
	Frame    int
	Bodies   int
	Pairs    int
	Triggers int
	Stays    int
	Exits    int
	Detect   time.Duration
	Dispatch time.Duration
}

type RayResult struct {
	Name   string
	Target string // actor hit, empty on a miss
	Hit    collision.RayHit
}

type namedRay struct {
	name string
	ray  *engine.Ray
}

type Scene struct {
	cfg     *config.Config
	manager *collision.Manager
	actors  []*Actor
	rays    []namedRay
	frame   int
	events  []Event
	stats   FrameStats
	log     logr.Logger
}

// New validates cfg and builds the scene. The caller must Close it.
func New(cfg *config.Config, log logr.Logger) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		cfg: cfg,
		manager: collision.New(
			collision.WithWorkers(cfg.Workers),
			collision.WithDistanceCutoff(cfg.Cutoff),
			collision.WithLogger(log),
		),
		log: log,
	}

	for _, bc := range cfg.Bodies {
		if _, err := s.Spawn(bc); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := s.spawnRandom(); err != nil {
		s.Close()
		return nil, err
	}
	for _, rc := range cfg.Rays {
		s.rays = append(s.rays, namedRay{name: rc.Name, ray: buildRay(rc)})
	}

	s.log.V(1).Info("Scene: created", "name", cfg.Name, "bodies", len(s.actors), "rays", len(s.rays), "workers", s.manager.Workers())
	return s, nil
}

func (s *Scene) Close() {
	s.manager.Close()
}

func (s *Scene) Manager() *collision.Manager {
	return s.manager
}

func (s *Scene) Config() *config.Config {
	return s.cfg
}

// Actors returns the actors still in the scene.
func (s *Scene) Actors() []*Actor {
	return s.actors
}

// Frame is the number of completed steps.
func (s *Scene) Frame() int {
	return s.frame
}

// Events returns the callbacks fired during the last Step.
func (s *Scene) Events() []Event {
	return s.events
}

// ActorOf returns the actor owning b, or nil.
func ActorOf(b *engine.Body) *Actor {
	if b == nil {
		return nil
	}
	a, _ := b.Owner().(*Actor)
	return a
}

// Find returns the actor with the given name.
func (s *Scene) Find(name string) *Actor {
	for _, a := range s.actors {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Spawn creates an actor from bc and registers its body.
// Safe to call from a collision callback; the body joins detection next frame.
func (s *Scene) Spawn(bc config.BodyConfig) (*Actor, error) {
	body, err := engine.NewBody(s.manager)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn %s: %w", bc.Name, err)
	}
	a := &Actor{
		Name:     bc.Name,
		Body:     body,
		Velocity: bc.Velocity.Vector(),
		Consume:  bc.Consume,
	}
	if a.Name == "" {
		a.Name = body.ID()[:8]
	}

	body.SetShape(bc.Kind()).
		SetPosition(bc.Position.Vector()).
		SetSize(bc.Extent()).
		AddAttribute(bc.Attribute).
		AddIgnore(bc.Ignore).
		SetOwner(a)
	if bc.Disabled {
		body.Disable()
	}
	s.watch(a)

	s.actors = append(s.actors, a)
	return a, nil
}

// Remove destroys the actor's body and drops it from the scene.
func (s *Scene) Remove(a *Actor) {
	for i, other := range s.actors {
		if other == a {
			s.actors = append(s.actors[:i], s.actors[i+1:]...)
			break
		}
	}
	a.Body.Destroy()
	s.log.V(1).Info("Scene: removed actor", "name", a.Name, "frame", s.frame)
}

func (s *Scene) watch(a *Actor) {
	self := engine.RefTo(a.Body)
	for _, kind := range []engine.EventKind{engine.EventTrigger, engine.EventStay, engine.EventExit} {
		kind := kind
		a.Body.SetCallback(kind, func(other *engine.Body) {
			s.record(a, kind, self, engine.RefTo(other))
		})
	}
}

func (s *Scene) record(a *Actor, kind engine.EventKind, self, other engine.BodyRef) {
	s.events = append(s.events, Event{Frame: s.frame, Kind: kind, Self: self, Other: other})
	switch kind {
	case engine.EventTrigger:
		a.Triggers++
		s.stats.Triggers++
		if a.Consume && a.Body.Alive() {
			s.Remove(a)
		}
	case engine.EventStay:
		a.Stays++
		s.stats.Stays++
	case engine.EventExit:
		a.Exits++
		s.stats.Exits++
	}
}

// Step advances every actor by dt, then runs one detection frame.
func (s *Scene) Step() FrameStats {
	s.move(s.cfg.Dt)

	s.events = nil
	s.stats = FrameStats{Frame: s.frame + 1}

	start := time.Now()
	s.manager.Detect()
	s.stats.Detect = time.Since(start)
	s.stats.Pairs = len(s.manager.Pairs())

	start = time.Now()
	s.manager.ProcessEvent()
	s.stats.Dispatch = time.Since(start)

	s.frame++
	s.stats.Bodies = len(s.actors)
	return s.stats
}

// Run steps frames times and reports each frame to fn when it is not nil.
func (s *Scene) Run(frames int, fn func(FrameStats)) []FrameStats {
	all := make([]FrameStats, 0, frames)
	for i := 0; i < frames; i++ {
		st := s.Step()
		all = append(all, st)
		if fn != nil {
			fn(st)
		}
	}
	return all
}

func (s *Scene) move(dt float32) {
	bounds := s.cfg.Bounds
	for _, a := range s.actors {
		if a.Velocity == (rl.Vector3{}) {
			continue
		}
		pos := rl.Vector3Add(a.Body.Position(), rl.Vector3Scale(a.Velocity, dt))
		if bounds > 0 {
			pos.X, a.Velocity.X = bounce(pos.X, a.Velocity.X, bounds)
			pos.Y, a.Velocity.Y = bounce(pos.Y, a.Velocity.Y, bounds)
			pos.Z, a.Velocity.Z = bounce(pos.Z, a.Velocity.Z, bounds)
		}
		a.Body.SetPosition(pos)
	}
}

// bounce reflects a coordinate that left [-limit, limit].
func bounce(p, v, limit float32) (float32, float32) {
	switch {
	case p > limit:
		return 2*limit - p, -v
	case p < -limit:
		return -2*limit - p, -v
	}
	return p, v
}

// CastRays runs every configured ray against the current bodies.
func (s *Scene) CastRays() []RayResult {
	out := make([]RayResult, 0, len(s.rays))
	for _, r := range s.rays {
		out = append(out, s.cast(r.name, r.ray))
	}
	return out
}

// Cast runs one ad-hoc ray.
func (s *Scene) Cast(name string, rc config.RayConfig) RayResult {
	return s.cast(name, buildRay(rc))
}

func (s *Scene) cast(name string, r *engine.Ray) RayResult {
	res := RayResult{Name: name, Hit: s.manager.RayCast(r)}
	if res.Hit.Hit() {
		if a := ActorOf(engine.BodyRef{ID: res.Hit.ID}.Get(s.manager)); a != nil {
			res.Target = a.Name
		}
	}
	return res
}

func buildRay(rc config.RayConfig) *engine.Ray {
	var r *engine.Ray
	if rc.Target != nil {
		r = engine.NewRayTo(rc.Origin.Vector(), rc.Target.Vector())
	} else {
		r = engine.NewRay(rc.Origin.Vector(), rc.Direction.Vector(), rc.Length)
	}
	return r.AddAttribute(rc.Attribute).AddIgnore(rc.Ignore).SetOwner(rc.Name)
}

func (s *Scene) spawnRandom() error {
	rc := s.cfg.Random
	if rc.Count == 0 {
		return nil
	}
	bounds := s.cfg.Bounds
	if bounds <= 0 {
		bounds = config.DefaultBounds
	}
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	coord := func() float32 { return (rng.Float32()*2 - 1) * bounds }

	for i := 0; i < rc.Count; i++ {
		shape := rc.Shape
		if shape == "mixed" {
			shape = physics.ShapeSphere.String()
			if rng.Intn(2) == 0 {
				shape = physics.ShapeBox.String()
			}
		}
		size := rc.MinSize + rng.Float32()*(rc.MaxSize-rc.MinSize)
		dir := rl.Vector3Normalize(rl.Vector3{X: rng.Float32()*2 - 1, Y: rng.Float32()*2 - 1, Z: rng.Float32()*2 - 1})
		speed := rng.Float32() * rc.MaxSpeed

		bc := config.BodyConfig{
			Name:     fmt.Sprintf("random-%d", i),
			Shape:    shape,
			Position: config.V(coord(), coord(), coord()),
			Radius:   size,
			HalfSize: config.V(size, size, size),
			Velocity: config.V(dir.X*speed, dir.Y*speed, dir.Z*speed),
		}
		if _, err := s.Spawn(bc); err != nil {
			return err
		}
	}
	return nil
}
