//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/repository"
)

func TestAccessCodeRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	ctx := context.Background()
	repo := NewAccessCodeRepo(testPool)
	tm := NewTxManager(testPool)

	t.Run("save, get, and count an audit record", func(t *testing.T) {
		cleanup(t)

		code, _ := model.NewAccessCode("HARVEST24", 50)
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := repo.Get(ctx, nil, "HARVEST24")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Uses != 0 || got.MaxUses != 50 || got.LastUsed != nil {
			t.Errorf("unexpected row: %+v", got)
		}

		now := time.Now()
		got.Uses = 1
		got.LastUsed = &now
		if err := repo.Save(ctx, nil, got); err != nil {
			t.Fatalf("save counter: %v", err)
		}
		use := &model.AccessCodeUse{Code: "HARVEST24", FarmerUID: "uid-1", Email: "f@example.com", UsedAt: now}
		if err := repo.RecordUse(ctx, nil, use); err != nil {
			t.Fatalf("record use: %v", err)
		}

		if ok, err := repo.HasUse(ctx, nil, "HARVEST24", "uid-1"); err != nil || !ok {
			t.Errorf("HasUse = %v, %v; want true", ok, err)
		}
		if ok, _ := repo.HasUse(ctx, nil, "HARVEST24", "uid-2"); ok {
			t.Error("HasUse for an unknown uid should be false")
		}
	})

	t.Run("missing code is ErrNotFound", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.Get(ctx, nil, "nope"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("GetForUpdate requires a transaction", func(t *testing.T) {
		cleanup(t)
		if _, err := repo.GetForUpdate(ctx, nil, "X"); !errors.Is(err, domain.ErrInvalidExecContext) {
			t.Errorf("got %v, want ErrInvalidExecContext", err)
		}
	})

	t.Run("concurrent locked increments never exceed the cap", func(t *testing.T) {
		cleanup(t)
		code, _ := model.NewAccessCode("SCARCE", 5)
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("save: %v", err)
		}

		var wg sync.WaitGroup
		granted := make(chan struct{}, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
					ac, err := repo.GetForUpdate(ctx, tx, "SCARCE")
					if err != nil {
						return err
					}
					if ac.Exhausted() {
						return domain.ErrCodeExpired
					}
					now := time.Now()
					ac.Uses++
					ac.LastUsed = &now
					if err := repo.Save(ctx, tx, ac); err != nil {
						return err
					}
					return repo.RecordUse(ctx, tx, &model.AccessCodeUse{
						Code: "SCARCE", FarmerUID: fmt.Sprintf("uid-%d", n), UsedAt: now,
					})
				})
				if err == nil {
					granted <- struct{}{}
				}
			}(i)
		}
		wg.Wait()
		close(granted)

		won := 0
		for range granted {
			won++
		}
		if won != 5 {
			t.Errorf("granted %d redemptions, cap is 5", won)
		}
		ac, _ := repo.Get(ctx, nil, "SCARCE")
		if ac.Uses != 5 {
			t.Errorf("counter ended at %d, want 5", ac.Uses)
		}
	})

	t.Run("rolled back transaction leaves the counter untouched", func(t *testing.T) {
		cleanup(t)
		code, _ := model.NewAccessCode("ROLLBACK", 50)
		if err := repo.Save(ctx, nil, code); err != nil {
			t.Fatalf("save: %v", err)
		}

		wantErr := errors.New("abort")
		err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			ac, err := repo.GetForUpdate(ctx, tx, "ROLLBACK")
			if err != nil {
				return err
			}
			ac.Uses++
			if err := repo.Save(ctx, tx, ac); err != nil {
				return err
			}
			return wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("got %v, want abort error", err)
		}
		ac, _ := repo.Get(ctx, nil, "ROLLBACK")
		if ac.Uses != 0 {
			t.Errorf("counter moved to %d inside a rolled back tx", ac.Uses)
		}
	})
}
