package ledger

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Store persists ledger snapshots locally. Satisfied by
// repository.LedgerRepository.
type Store interface {
	Load(ctx context.Context, userID string) (domain.GameState, bool, error)
	Save(ctx context.Context, userID string, state domain.GameState) error
}

// RemotePusher mirrors snapshots to the remote backend. Satisfied by
// backend.Client.
type RemotePusher interface {
	PutLedger(ctx context.Context, userID string, state domain.GameState) error
}

// Ledger owns the authoritative copy of one user's economy state. Every
// mutation runs under its lock and flows through the same pipeline: apply,
// persist locally, notify subscribers, then push to the remote backend on a
// background goroutine. A failed push never rolls back the local write.
type Ledger struct {
	mu       sync.Mutex
	userID   string
	state    domain.GameState
	owned    map[string]struct{}
	store    Store
	remote   RemotePusher
	notifier *Notifier
	logger   zerolog.Logger
	pushes   sync.WaitGroup

	pushMu      sync.Mutex
	pendingPush *domain.GameState
	pushing     bool

	pushBudget    time.Duration
	pushBaseDelay time.Duration
}

// Open loads the user's persisted snapshot, or seeds a fresh state with the
// starting coin balance when none exists.
func Open(ctx context.Context, userID string, store Store, remote RemotePusher, logger zerolog.Logger) (*Ledger, error) {
	l := &Ledger{
		userID:        userID,
		store:         store,
		remote:        remote,
		notifier:      NewNotifier(),
		logger:        logger.With().Str("component", "ledger").Str("user_id", userID).Logger(),
		pushBudget:    constants.SyncPushMaxElapsed,
		pushBaseDelay: constants.SyncPushBaseDelay,
	}

	state, found, err := store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		state = domain.NewGameState(constants.StartingCoins)
		if err := store.Save(ctx, userID, state); err != nil {
			return nil, err
		}
		l.logger.Info().Int("coins", state.Coins).Msg("seeded fresh state")
	}

	l.state = state
	l.owned = ownedSet(state.Collection)
	return l, nil
}

func ownedSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Subscribe registers a state observer and returns its unsubscribe function.
func (l *Ledger) Subscribe(fn func(domain.GameState)) func() {
	return l.notifier.Subscribe(fn)
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() domain.GameState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

func (l *Ledger) Coins() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Coins
}

func (l *Ledger) Owns(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.owned[playerID]
	return ok
}

// Tx exposes the mutable state to an Update closure. All methods must be
// called from inside the closure only.
type Tx struct {
	state *domain.GameState
	owned map[string]struct{}
}

func (t *Tx) State() *domain.GameState { return t.state }

func (t *Tx) Coins() int { return t.state.Coins }

func (t *Tx) AddCoins(amount int) { t.state.Coins += amount }

// SpendCoins deducts the cost, or reports ErrInsufficientFunds leaving the
// balance untouched.
func (t *Tx) SpendCoins(cost int) error {
	if t.state.Coins < cost {
		return ErrInsufficientFunds
	}
	t.state.Coins -= cost
	return nil
}

func (t *Tx) Owns(playerID string) bool {
	_, ok := t.owned[playerID]
	return ok
}

// Grant adds a card to the collection. Returns false when it was already
// owned, in which case the collection is unchanged.
func (t *Tx) Grant(playerID string) bool {
	if _, ok := t.owned[playerID]; ok {
		return false
	}
	t.owned[playerID] = struct{}{}
	t.state.Collection = append(t.state.Collection, playerID)
	return true
}

// Revoke removes a card from the collection. Returns false when it was not
// owned.
func (t *Tx) Revoke(playerID string) bool {
	if _, ok := t.owned[playerID]; !ok {
		return false
	}
	delete(t.owned, playerID)
	for i, id := range t.state.Collection {
		if id == playerID {
			t.state.Collection = append(t.state.Collection[:i], t.state.Collection[i+1:]...)
			break
		}
	}
	return true
}

func (t *Tx) SetCooldown(kind domain.Cooldown, at time.Time) {
	t.state.SetCooldown(kind, at)
}

// Update applies fn under the ledger lock. When fn returns nil the mutated
// state is persisted, published to subscribers, and pushed to the remote
// backend asynchronously. When fn returns an error the in-memory state is
// restored and nothing is written.
func (l *Ledger) Update(ctx context.Context, fn func(tx *Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev := l.state.Clone()
	prevOwned := l.owned

	next := l.state.Clone()
	nextOwned := ownedSet(next.Collection)

	if err := fn(&Tx{state: &next, owned: nextOwned}); err != nil {
		return err
	}

	l.state = next
	l.owned = nextOwned

	if err := l.store.Save(ctx, l.userID, l.state); err != nil {
		l.state = prev
		l.owned = prevOwned
		return err
	}

	snapshot := l.state.Clone()
	l.notifier.Publish(snapshot)
	l.pushRemote(snapshot)
	return nil
}

// Replace swaps the full state, used by the sync coordinator after a merge.
// It flows through the same persist and notify pipeline but does not push
// back to the remote; the coordinator issues its own push with the merged
// result.
func (l *Ledger) Replace(ctx context.Context, state domain.GameState) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := state.Clone()
	if err := l.store.Save(ctx, l.userID, next); err != nil {
		return err
	}
	l.state = next
	l.owned = ownedSet(next.Collection)
	l.notifier.Publish(l.state.Clone())
	return nil
}

// pushRemote queues a snapshot for the single push worker. Mutations that
// land while a push is in flight coalesce into one trailing push of the
// newest snapshot, so an older retrying push can never overwrite a fresher
// one remotely.
func (l *Ledger) pushRemote(state domain.GameState) {
	if l.remote == nil {
		return
	}
	l.pushMu.Lock()
	l.pendingPush = &state
	if l.pushing {
		l.pushMu.Unlock()
		return
	}
	l.pushing = true
	l.pushMu.Unlock()

	l.pushes.Add(1)
	go l.drainPushes()
}

func (l *Ledger) drainPushes() {
	defer l.pushes.Done()
	for {
		l.pushMu.Lock()
		state := l.pendingPush
		l.pendingPush = nil
		if state == nil {
			l.pushing = false
			l.pushMu.Unlock()
			return
		}
		l.pushMu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), l.pushBudget)
		backoff := retry.WithMaxDuration(l.pushBudget, retry.NewFibonacci(l.pushBaseDelay))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			return retry.RetryableError(l.remote.PutLedger(ctx, l.userID, *state))
		})
		cancel()
		if err != nil {
			l.logger.Warn().Err(err).Msg("remote push failed, keeping local state")
		}
	}
}

// Flush blocks until all in-flight remote pushes finish. Used on shutdown
// and in tests.
func (l *Ledger) Flush() {
	l.pushes.Wait()
}
