package store

import (
	"context"
	"errors"
	"fmt"
	"log"
)

type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// CompensationLog journalise les actions inverses d'une unité de travail.
type CompensationLog struct {
	steps []compensation
}

func (l *CompensationLog) OnRollback(step string, undo func(ctx context.Context) error) {
	l.steps = append(l.steps, compensation{step: step, undo: undo})
}

func (l *CompensationLog) Len() int { return len(l.steps) }

// Rollback rejoue tout, du plus récent au plus ancien, même si une étape échoue.
func (l *CompensationLog) Rollback(ctx context.Context) error {
	var errs []error
	for i := len(l.steps) - 1; i >= 0; i-- {
		s := l.steps[i]
		if err := s.undo(ctx); err != nil {
			log.Printf("❌ Compensation échouée (%s): %v", s.step, err)
			errs = append(errs, fmt.Errorf("%s: %w", s.step, err))
		}
	}
	l.steps = nil
	return errors.Join(errs...)
}

// RunCompensated exécute fn sans verrou et compense en cas d'erreur.
// C'est le TxManager des magasins sans transactions multi-documents.
func RunCompensated(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	var journal CompensationLog
	if err := fn(ctx, &journal); err != nil {
		// le contexte de la requête peut être annulé : on compense quand même
		if rbErr := journal.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback incomplet: %w", rbErr))
		}
		return err
	}
	return nil
}
