package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-dashboard/internal/balances"
	"github.com/AlexZinkM/wallet-dashboard/internal/model"
	"github.com/AlexZinkM/wallet-dashboard/internal/session"
)

// Balances fetches the stored balances
func (s *Service) Balances(ctx context.Context, sess session.Session) (balances.Snapshot, error) {
	return s.refresh(ctx, sess, balances.Load, false)
}

// Refetch loads the stored balances without joining a load already in flight
func (s *Service) Refetch(ctx context.Context, sess session.Session) (balances.Snapshot, error) {
	return s.refresh(ctx, sess, balances.Load, true)
}

// RefreshBalances asks the backend to resync and returns the fresh balances
func (s *Service) RefreshBalances(ctx context.Context, sess session.Session) (balances.Snapshot, error) {
	return s.refresh(ctx, sess, balances.Update, false)
}

// CurrentBalances returns the last snapshot seen for sess, fetching one if there is none
func (s *Service) CurrentBalances(ctx context.Context, sess session.Session) (model.Balances, error) {
	if _, err := requireToken(sess); err != nil {
		return nil, err
	}
	if snap, ok := s.book.Recall(ctx, sess.ID()); ok {
		return snap.Balances, nil
	}
	snap, err := s.Balances(ctx, sess)
	if err != nil {
		return nil, err
	}
	return snap.Balances, nil
}

func (s *Service) refresh(ctx context.Context, sess session.Session, kind balances.Kind, force bool) (balances.Snapshot, error) {
	token, err := requireToken(sess)
	if err != nil {
		return balances.Snapshot{}, err
	}

	fetch := s.backend.GetBalances
	if kind == balances.Update {
		fetch = s.backend.UpdateBalances
	}

	fetcher := func(ctx context.Context) (model.Balances, error) {
		return fetch(ctx, token)
	}
	var snap balances.Snapshot
	if force {
		snap, err = s.book.Force(ctx, sess.ID(), fetcher)
	} else {
		snap, err = s.book.Refresh(ctx, sess.ID(), kind, fetcher)
	}
	if err != nil {
		return balances.Snapshot{}, fmt.Errorf("failed to %s balances: %w", kind, err)
	}

	if snap.Stale {
		// a newer result is stored, show that one
		if latest, ok := s.book.Latest(sess.ID()); ok && latest.Seq > snap.Seq {
			return latest, nil
		}
	}
	return snap, nil
}
