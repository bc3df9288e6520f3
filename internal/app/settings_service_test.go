package app

import (
	"context"
	"testing"

	"hearing_reminder_bot/internal/domain/hearing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsService_AudioEnabledFailsOpen(t *testing.T) {
	tests := []struct {
		name  string
		value *string
		err   error
		want  bool
	}{
		{name: "missing row", want: true},
		{name: "true", value: ptr("true"), want: true},
		{name: "false", value: ptr("false"), want: false},
		{name: "false any case", value: ptr(" False "), want: false},
		{name: "unrecognized", value: ptr("no"), want: true},
		{name: "empty", value: ptr(""), want: true},
		{name: "store error", value: ptr("false"), err: errStoreDown, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo()
			if tt.value != nil {
				require.NoError(t, repo.SetSetting(context.Background(), hearing.SettingAudioEnabled, *tt.value))
			}
			repo.setErr(tt.err)

			s := NewSettingsService(repo, testLogger())
			assert.Equal(t, tt.want, s.AudioEnabled(context.Background()))
		})
	}
}

func ptr(s string) *string { return &s }
