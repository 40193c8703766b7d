package archetype

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/domain"
)

type fakeGenerator struct {
	record *domain.ArchetypeRecord
	err    error
	calls  int
}

func (f *fakeGenerator) GenerateArchetype(_ context.Context, playerID, _, _ string) (*domain.ArchetypeRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func testPlayer() *domain.Player {
	return &domain.Player{ID: "p1", FirstName: "Test", LastName: "Player", PPG: 20.5}
}

func TestResolveCacheHitSkipsGeneration(t *testing.T) {
	c := newTestCache(t, newFakeLocal(), newFakeRemote())
	rec := domain.ArchetypeRecord{PlayerID: "p1", Archetype: "Shooter", CrestImageURL: "https://img/p1.png"}
	if err := c.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	gen := &fakeGenerator{}
	r := NewResolver(c, gen, zerolog.Nop())

	rec, found, err := r.Resolve(context.Background(), testPlayer())
	if err != nil || !found {
		t.Fatalf("Resolve() = %v, %v", found, err)
	}
	if rec.Archetype != "Shooter" {
		t.Errorf("archetype = %q, want cached Shooter", rec.Archetype)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times for a cache hit", gen.calls)
	}
}

func TestResolveGeneratesOnFullMiss(t *testing.T) {
	c := newTestCache(t, newFakeLocal(), newFakeRemote())
	gen := &fakeGenerator{record: &domain.ArchetypeRecord{
		PlayerID:      "p1",
		Archetype:     "Two-Way Wing",
		CrestImageURL: "https://img/crest.png",
	}}
	r := NewResolver(c, gen, zerolog.Nop())

	rec, found, err := r.Resolve(context.Background(), testPlayer())
	if err != nil || !found {
		t.Fatalf("Resolve() = %v, %v", found, err)
	}
	if !rec.HasCrestImage() {
		t.Error("crest image lost on the way through")
	}

	// generation result must be cached for the next call
	if cached, ok := c.Get("p1"); !ok || cached.Archetype != "Two-Way Wing" {
		t.Errorf("cached = %+v ok=%v, want generated record", cached, ok)
	}

	if _, _, err := r.Resolve(context.Background(), testPlayer()); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

func TestResolveRegeneratesCrestlessRecord(t *testing.T) {
	c := newTestCache(t, newFakeLocal(), newFakeRemote())
	stale := domain.ArchetypeRecord{PlayerID: "p1", Archetype: "Shooter"}
	if err := c.Put(context.Background(), stale); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	gen := &fakeGenerator{record: &domain.ArchetypeRecord{
		PlayerID:      "p1",
		Archetype:     "Shooter",
		CrestImageURL: "https://img/p1.png",
	}}
	r := NewResolver(c, gen, zerolog.Nop())

	rec, found, err := r.Resolve(context.Background(), testPlayer())
	if err != nil || !found {
		t.Fatalf("Resolve() = %v, %v", found, err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator calls = %d, want 1 for a crest-less record", gen.calls)
	}
	if !rec.HasCrestImage() {
		t.Error("regenerated record still lacks a crest image")
	}
	if cached, ok := c.Get("p1"); !ok || !cached.HasCrestImage() {
		t.Errorf("cached = %+v ok=%v, want regenerated record with crest", cached, ok)
	}
}

func TestResolveKeepsCrestlessRecordOnFailedRegeneration(t *testing.T) {
	c := newTestCache(t, newFakeLocal(), newFakeRemote())
	stale := domain.ArchetypeRecord{PlayerID: "p1", Archetype: "Shooter"}
	if err := c.Put(context.Background(), stale); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	gen := &fakeGenerator{err: errors.New("function failed")}
	r := NewResolver(c, gen, zerolog.Nop())

	rec, found, err := r.Resolve(context.Background(), testPlayer())
	if err != nil {
		t.Fatalf("Resolve() error = %v, want crest-less record back", err)
	}
	if !found || rec.Archetype != "Shooter" {
		t.Errorf("Resolve() = %+v, %v, want the existing record", rec, found)
	}
	if rec.HasCrestImage() {
		t.Error("crest image appeared out of nowhere")
	}
}

func TestResolveAbsentGeneration(t *testing.T) {
	c := newTestCache(t, newFakeLocal(), newFakeRemote())
	gen := &fakeGenerator{record: nil}
	r := NewResolver(c, gen, zerolog.Nop())

	_, found, err := r.Resolve(context.Background(), testPlayer())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if found {
		t.Error("found = true for an absent generation")
	}
}

func TestResolveGenerationError(t *testing.T) {
	c := newTestCache(t, newFakeLocal(), newFakeRemote())
	gen := &fakeGenerator{err: errors.New("function failed")}
	r := NewResolver(c, gen, zerolog.Nop())

	if _, _, err := r.Resolve(context.Background(), testPlayer()); err == nil {
		t.Fatal("Resolve() = nil error, want generation error")
	}
}
