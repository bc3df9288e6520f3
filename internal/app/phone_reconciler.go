package app

import (
	"context"
	"fmt"

	"hearing_reminder_bot/internal/domain/hearing"

	"github.com/sirupsen/logrus"
)

// PhoneReconciler maps a raw messaging identity to the phone as stored.
type PhoneReconciler struct {
	repo   hearing.Repository
	logger *logrus.Entry
}

func NewPhoneReconciler(repo hearing.Repository, logger *logrus.Entry) *PhoneReconciler {
	return &PhoneReconciler{repo: repo, logger: logger.WithField("component", "phone_reconciler")}
}

// Reconcile returns the first stored phone whose last 10 digits equal the
// sender's. It fails with hearing.ErrUnregistered when the identity is too
// short or nothing matches, and with ErrStoreUnavailable when the store fails.
func (r *PhoneReconciler) Reconcile(ctx context.Context, rawIdentity string) (string, error) {
	senderSuffix, ok := hearing.CanonicalPhone(rawIdentity)
	if !ok {
		r.logger.WithField("identity", rawIdentity).Debug("Identity has fewer than 10 digits")
		return "", hearing.ErrUnregistered
	}

	phones, err := r.repo.ListPhones(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: list phones: %w", ErrStoreUnavailable, err)
	}

	for _, stored := range phones {
		storedSuffix, ok := hearing.CanonicalPhone(stored)
		if ok && storedSuffix == senderSuffix {
			r.logger.WithFields(logrus.Fields{"identity": rawIdentity, "phone": stored}).Debug("Phone matched")
			return stored, nil
		}
	}

	r.logger.WithField("identity", rawIdentity).Info("Phone not found in store")
	return "", hearing.ErrUnregistered
}
