package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hoopcrest/hoopcrest/internal/constants"
	"github.com/hoopcrest/hoopcrest/internal/domain"
	"github.com/hoopcrest/hoopcrest/internal/gacha"
	"github.com/hoopcrest/hoopcrest/internal/ledger"
)

func newMiniGameFixture(t *testing.T, rng gacha.RandomSource, start *domain.GameState) (*MiniGameService, *ledger.Ledger, *time.Time) {
	t.Helper()
	store := newMemStore()
	if start != nil {
		store.states["u1"] = *start
	}
	led, err := ledger.Open(context.Background(), "u1", store, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("ledger.Open() error = %v", err)
	}

	svc := NewMiniGameService(led, rng, zerolog.Nop())
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, led, &now
}

func prizeInTable(table []prize, coins int) bool {
	for _, p := range table {
		if p.Coins == coins {
			return true
		}
	}
	return false
}

func TestLuckySpinAwardsTablePrize(t *testing.T) {
	svc, led, _ := newMiniGameFixture(t, gacha.NewSeededRNG(8), nil)

	won, err := svc.LuckySpin(context.Background())
	if err != nil {
		t.Fatalf("LuckySpin() error = %v", err)
	}
	if !prizeInTable(luckySpinPrizes, won) {
		t.Errorf("prize %d not in the spin table", won)
	}

	state := led.Snapshot()
	if state.Coins != constants.StartingCoins+won {
		t.Errorf("coins = %d, want %d", state.Coins, constants.StartingCoins+won)
	}
	if state.LastLuckySpinUTC == nil {
		t.Error("spin cooldown not started")
	}
}

func TestLuckySpinCooldown(t *testing.T) {
	svc, _, now := newMiniGameFixture(t, gacha.NewSeededRNG(8), nil)

	if _, err := svc.LuckySpin(context.Background()); err != nil {
		t.Fatalf("first spin error = %v", err)
	}
	if _, err := svc.LuckySpin(context.Background()); !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("second spin error = %v, want ErrCooldownActive", err)
	}

	*now = now.Add(constants.LuckySpinCooldown)
	if _, err := svc.LuckySpin(context.Background()); err != nil {
		t.Fatalf("spin after cooldown error = %v", err)
	}
}

func TestMysteryBoxAwardsTablePrize(t *testing.T) {
	svc, led, _ := newMiniGameFixture(t, gacha.NewSeededRNG(17), nil)

	won, err := svc.MysteryBox(context.Background())
	if err != nil {
		t.Fatalf("MysteryBox() error = %v", err)
	}
	if !prizeInTable(mysteryBoxPrizes, won) {
		t.Errorf("prize %d not in the box table", won)
	}
	if got := led.Snapshot().Coins; got != constants.StartingCoins+won {
		t.Errorf("coins = %d, want %d", got, constants.StartingCoins+won)
	}
}

func TestDrawPrizeCoversWholeTable(t *testing.T) {
	rng := gacha.NewSeededRNG(4)
	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		seen[drawPrize(luckySpinPrizes, rng)] = true
	}
	for _, p := range luckySpinPrizes {
		if !seen[p.Coins] {
			t.Errorf("prize %d never drawn in 5000 trials", p.Coins)
		}
	}
}

func TestCoinFlipValidation(t *testing.T) {
	tests := []struct {
		name string
		bet  int
	}{
		{"below minimum", constants.CoinFlipMinBet - 25},
		{"above maximum", constants.CoinFlipMaxBet + 25},
		{"off the step grid", constants.CoinFlipMinBet + 1},
		{"zero", 0},
		{"negative", -100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newMiniGameFixture(t, gacha.NewSeededRNG(1), nil)
			if _, err := svc.CoinFlip(context.Background(), tt.bet); !errors.Is(err, ErrInvalidBet) {
				t.Errorf("CoinFlip(%d) error = %v, want ErrInvalidBet", tt.bet, err)
			}
		})
	}
}

func TestCoinFlipWin(t *testing.T) {
	// draw 0.3 < 0.5 wins
	svc, led, _ := newMiniGameFixture(t, &seqRNG{vals: []float64{0.3}}, nil)

	result, err := svc.CoinFlip(context.Background(), 100)
	if err != nil {
		t.Fatalf("CoinFlip() error = %v", err)
	}
	if !result.Won || result.Delta != 100 {
		t.Errorf("result = %+v, want win +100", result)
	}
	if got := led.Snapshot().Coins; got != constants.StartingCoins+100 {
		t.Errorf("coins = %d, want %d", got, constants.StartingCoins+100)
	}
}

func TestCoinFlipLoss(t *testing.T) {
	svc, led, _ := newMiniGameFixture(t, &seqRNG{vals: []float64{0.9}}, nil)

	result, err := svc.CoinFlip(context.Background(), 100)
	if err != nil {
		t.Fatalf("CoinFlip() error = %v", err)
	}
	if result.Won || result.Delta != -100 {
		t.Errorf("result = %+v, want loss -100", result)
	}
	if got := led.Snapshot().Coins; got != constants.StartingCoins-100 {
		t.Errorf("coins = %d, want %d", got, constants.StartingCoins-100)
	}
}

func TestCoinFlipLossNeedsBalance(t *testing.T) {
	start := domain.GameState{Coins: 50, Collection: []string{}}
	svc, led, _ := newMiniGameFixture(t, &seqRNG{vals: []float64{0.9}}, &start)

	if _, err := svc.CoinFlip(context.Background(), 100); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("CoinFlip() error = %v, want ErrInsufficientFunds", err)
	}

	state := led.Snapshot()
	if state.Coins != 50 {
		t.Errorf("coins = %d, want unchanged 50", state.Coins)
	}
	if state.LastCoinFlipUTC != nil {
		t.Error("cooldown started for a rejected flip")
	}
}

func TestSettleTrivia(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		want    int
		wantErr error
	}{
		{"all correct", 5, 500, nil},
		{"partial", 3, 300, nil},
		{"none", 0, 0, nil},
		{"too many", 6, 0, ErrInvalidBet},
		{"negative", -1, 0, ErrInvalidBet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, led, _ := newMiniGameFixture(t, gacha.NewSeededRNG(1), nil)
			got, err := svc.SettleTrivia(context.Background(), tt.correct)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SettleTrivia() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SettleTrivia() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("reward = %d, want %d", got, tt.want)
			}
			if coins := led.Snapshot().Coins; coins != constants.StartingCoins+tt.want {
				t.Errorf("coins = %d, want %d", coins, constants.StartingCoins+tt.want)
			}
		})
	}
}

func TestTriviaCooldown(t *testing.T) {
	svc, _, now := newMiniGameFixture(t, gacha.NewSeededRNG(1), nil)

	if _, err := svc.SettleTrivia(context.Background(), 2); err != nil {
		t.Fatalf("first settle error = %v", err)
	}
	if _, err := svc.SettleTrivia(context.Background(), 2); !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("second settle error = %v, want ErrCooldownActive", err)
	}

	*now = now.Add(constants.TriviaCooldown)
	if _, err := svc.SettleTrivia(context.Background(), 2); err != nil {
		t.Fatalf("settle after cooldown error = %v", err)
	}
}
