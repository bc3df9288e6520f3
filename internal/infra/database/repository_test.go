package database

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hearing_reminder_bot/internal/domain/hearing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(DialectSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, EnsureSchema(context.Background(), db, DialectSQLite))
	return db
}

func seed(t *testing.T, repo *HearingRepository, records ...*hearing.Record) {
	t.Helper()
	for _, rec := range records {
		require.NoError(t, repo.Create(context.Background(), rec))
	}
}

func TestHearingRepository_Lists(t *testing.T) {
	repo := NewHearingRepository(openTestDB(t), DialectSQLite)
	ctx := context.Background()

	a := &hearing.Record{ClientName: "Ravi", Phone: "+919640733498", CaseID: "100", HearingDate: "2025-03-11", HearingTime: "10:00 AM"}
	b := &hearing.Record{ClientName: "Sita", Phone: "+918888888888", CaseID: "200", HearingDate: "2025-03-11", HearingTime: "11:00 AM"}
	c := &hearing.Record{ClientName: "Ravi", Phone: "+919640733498", CaseID: "100", HearingDate: "2025-04-01", HearingTime: "09:00 AM"}
	seed(t, repo, a, b, c)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(3), c.ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]*hearing.Record{a, b, c}, all); diff != "" {
		t.Errorf("ListAll mismatch (-want +got):\n%s", diff)
	}

	byPhone, err := repo.ListByPhone(ctx, "+919640733498")
	require.NoError(t, err)
	if diff := cmp.Diff([]*hearing.Record{a, c}, byPhone); diff != "" {
		t.Errorf("ListByPhone mismatch (-want +got):\n%s", diff)
	}

	byCase, err := repo.ListByCase(ctx, "200")
	require.NoError(t, err)
	if diff := cmp.Diff([]*hearing.Record{b}, byCase); diff != "" {
		t.Errorf("ListByCase mismatch (-want +got):\n%s", diff)
	}

	byDate, err := repo.ListByDate(ctx, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	if diff := cmp.Diff([]*hearing.Record{a, b}, byDate); diff != "" {
		t.Errorf("ListByDate mismatch (-want +got):\n%s", diff)
	}

	none, err := repo.ListByCase(ctx, "999")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	phones, err := repo.ListPhones(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"+919640733498", "+918888888888"}, phones)
}

func TestHearingRepository_ListByDateIgnoresPadding(t *testing.T) {
	repo := NewHearingRepository(openTestDB(t), DialectSQLite)
	ctx := context.Background()

	padded := &hearing.Record{ClientName: "Ravi", Phone: "+919640733498", CaseID: "100", HearingDate: " 2025-03-11 ", HearingTime: "10:00 AM"}
	seed(t, repo, padded)

	d, err := padded.Date()
	require.NoError(t, err)

	got, err := repo.ListByDate(ctx, d)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, " 2025-03-11 ", got[0].HearingDate, "stored value is returned raw")
}

func TestHearingRepository_Settings(t *testing.T) {
	repo := NewHearingRepository(openTestDB(t), DialectSQLite)
	ctx := context.Background()

	value, err := repo.GetSetting(ctx, hearing.SettingAudioEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", value, "schema seeds audio on")

	require.NoError(t, repo.SetSetting(ctx, hearing.SettingAudioEnabled, "false"))
	value, err = repo.GetSetting(ctx, hearing.SettingAudioEnabled)
	require.NoError(t, err)
	assert.Equal(t, "false", value)

	_, err = repo.GetSetting(ctx, "missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)
}

func TestEnsureSchema_KeepsExistingSetting(t *testing.T) {
	db := openTestDB(t)
	repo := NewHearingRepository(db, DialectSQLite)
	ctx := context.Background()

	require.NoError(t, repo.SetSetting(ctx, hearing.SettingAudioEnabled, "false"))
	require.NoError(t, EnsureSchema(ctx, db, DialectSQLite))

	value, err := repo.GetSetting(ctx, hearing.SettingAudioEnabled)
	require.NoError(t, err)
	assert.Equal(t, "false", value)
}

func TestContactRepository(t *testing.T) {
	repo := NewContactRepository(openTestDB(t), DialectSQLite)
	ctx := context.Background()

	_, err := repo.GetContactByChatID(ctx, 42)
	assert.ErrorIs(t, err, ErrContactNotFound)

	require.NoError(t, repo.SaveContact(ctx, &hearing.Contact{ChatID: 42, Phone: "+91 96407 33498", CanonicalPhone: "9640733498"}))
	got, err := repo.GetContactByChatID(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, &hearing.Contact{ChatID: 42, Phone: "+91 96407 33498", CanonicalPhone: "9640733498"}, got)

	// Re-sharing replaces the phone for that chat.
	require.NoError(t, repo.SaveContact(ctx, &hearing.Contact{ChatID: 42, Phone: "+918888888888", CanonicalPhone: "8888888888"}))
	_, err = repo.GetContactByCanonicalPhone(ctx, "9640733498")
	assert.ErrorIs(t, err, ErrContactNotFound)

	byPhone, err := repo.GetContactByCanonicalPhone(ctx, "8888888888")
	require.NoError(t, err)
	assert.Equal(t, int64(42), byPhone.ChatID)
}

func TestRebind(t *testing.T) {
	q := `SELECT * FROM cases WHERE phone = ? AND case_id = ?`
	assert.Equal(t, q, rebind(DialectSQLite, q))
	assert.Equal(t, `SELECT * FROM cases WHERE phone = $1 AND case_id = $2`, rebind(DialectPostgres, q))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("mysql", "whatever")
	assert.Error(t, err)
}
