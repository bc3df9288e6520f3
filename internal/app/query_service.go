package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hearing_reminder_bot/internal/domain/hearing"
	"hearing_reminder_bot/internal/domain/intent"

	"github.com/sirupsen/logrus"
)

// Reply texts. They are also the input of speech synthesis, so keep them verbatim.
const (
	ReplyUnregistered       = "Your number is not registered in the system."
	ReplyNoHistory          = "No hearing history found."
	ReplyHistoryHeader      = "Your Case Hearing History:"
	ReplyNoHearingsForPhone = "No hearings scheduled for you."
	ReplyNoUpcoming         = "You have no upcoming hearings."
	ReplyCaseNotFound       = "Case not found."
	ReplyUnknown            = "I didn't understand. Try: 'next hearing', 'case history', or 'case 12345'."
)

// QueryService executes a resolved intent against the record store and
// formats the reply. It never writes to the store.
type QueryService struct {
	repo   hearing.Repository
	now    Clock
	logger *logrus.Entry
}

func NewQueryService(repo hearing.Repository, now Clock, logger *logrus.Entry) *QueryService {
	return &QueryService{repo: repo, now: now, logger: logger.WithField("component", "query_service")}
}

// Execute answers in for the client owning phone (a stored phone returned by
// PhoneReconciler). Expected conditions become reply text; only store
// failures come back as an error wrapping ErrStoreUnavailable.
func (s *QueryService) Execute(ctx context.Context, in intent.Intent, phone string) (string, error) {
	switch in.Kind {
	case intent.KindHistory:
		return s.history(ctx, phone)
	case intent.KindNextHearing:
		return s.nextHearing(ctx, phone)
	case intent.KindCaseLookup:
		return s.caseLookup(ctx, in.CaseID)
	default:
		return ReplyUnknown, nil
	}
}

func (s *QueryService) history(ctx context.Context, phone string) (string, error) {
	records, err := s.repo.ListByPhone(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("%w: list hearings for phone: %w", ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return ReplyNoHistory, nil
	}

	sortByDate(records)
	lines := make([]string, 0, len(records)+1)
	lines = append(lines, ReplyHistoryHeader)
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("Case %s: %s at %s", clean(r.CaseID), clean(r.HearingDate), clean(r.HearingTime)))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *QueryService) nextHearing(ctx context.Context, phone string) (string, error) {
	records, err := s.repo.ListByPhone(ctx, phone)
	if err != nil {
		return "", fmt.Errorf("%w: list hearings for phone: %w", ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return ReplyNoHearingsForPhone, nil
	}

	valid, rejected := hearing.PartitionByDate(records)
	s.reportUnparseable(rejected)

	today := hearing.Today(s.now())
	var upcoming []hearing.DatedRecord
	for _, dr := range valid {
		if !dr.Date.Before(today) {
			upcoming = append(upcoming, dr)
		}
	}
	if len(upcoming) == 0 {
		return ReplyNoUpcoming, nil
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date.Before(upcoming[j].Date)
	})
	next := upcoming[0]
	return fmt.Sprintf("Your next hearing:\nCase %s\nDate: %s at %s",
		clean(next.Record.CaseID), hearing.FormatDate(next.Date), clean(next.Record.HearingTime)), nil
}

func (s *QueryService) caseLookup(ctx context.Context, caseID string) (string, error) {
	records, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return "", fmt.Errorf("%w: list hearings for case: %w", ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		return ReplyCaseNotFound, nil
	}

	sortByDate(records)
	lines := make([]string, 0, len(records)+2)
	lines = append(lines, fmt.Sprintf("Case %s Hearings:", caseID), "Client: "+clean(records[0].ClientName))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s at %s", clean(r.HearingDate), clean(r.HearingTime)))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *QueryService) reportUnparseable(rejected []*hearing.Record) {
	for _, r := range rejected {
		s.logger.WithFields(logrus.Fields{
			"record_id":    r.ID,
			"case_id":      r.CaseID,
			"hearing_date": r.HearingDate,
		}).Warn("Skipping hearing with unparseable date")
	}
}

// sortByDate orders records by their ISO date text, which sorts
// chronologically. Ties keep storage order.
func sortByDate(records []*hearing.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return clean(records[i].HearingDate) < clean(records[j].HearingDate)
	})
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
