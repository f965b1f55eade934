package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/utils"
)

func TestSessionCreateDefaults(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions()
	svc := NewSessionService(sessions, &fakeMessages{}, tickingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))

	s, err := svc.Create(ctx, "u1", "  ", "")
	require.NoError(t, err)
	assert.Equal(t, "New Counseling Session", s.Title)
	assert.Equal(t, "general", s.Purpose)
	assert.NotEmpty(t, s.SessionID)
	assert.Equal(t, s.CreatedAt, s.UpdatedAt)

	s2, err := svc.Create(ctx, "u1", "Visa questions", "visa")
	require.NoError(t, err)
	assert.Equal(t, "Visa questions", s2.Title)

	list, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, s2.SessionID, list[0].SessionID)

	_, err = svc.Create(ctx, "", "", "")
	assert.Equal(t, utils.CodeInvalidArgument, utils.CodeOf(err))
}

func TestSessionIsUserScoped(t *testing.T) {
	ctx := context.Background()
	sessions := newFakeSessions(models.Session{SessionID: "s1", UserID: "u1"})
	msgs := &fakeMessages{msgs: []models.Message{
		{SessionID: "s1", Sender: models.SenderUser, Text: "first"},
		{SessionID: "s1", Sender: models.SenderAssistant, Text: "second"},
		{SessionID: "s2", Sender: models.SenderUser, Text: "other"},
	}}
	svc := NewSessionService(sessions, msgs, nil)

	_, err := svc.Get(ctx, "u2", "s1")
	assert.Equal(t, utils.CodeNotFound, utils.CodeOf(err))

	_, err = svc.Messages(ctx, "u2", "s1")
	assert.Equal(t, utils.CodeNotFound, utils.CodeOf(err))

	got, err := svc.Messages(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
}

func TestProfileService(t *testing.T) {
	ctx := context.Background()
	svc := NewProfileService(newFakeProfiles(), nil)

	_, err := svc.GetMe(ctx, "u1")
	assert.Equal(t, utils.CodeNotFound, utils.CodeOf(err))

	_, err = svc.Update(ctx, "u1", &models.ProfileDelta{Nationality: strp(" ")})
	assert.Equal(t, utils.CodeInvalidArgument, utils.CodeOf(err))

	p, err := svc.Update(ctx, "u1", &models.ProfileDelta{Nationality: strp("Kenyan"), PreferredCities: []string{"Berlin"}})
	require.NoError(t, err)
	assert.Equal(t, "Kenyan", p.Nationality)

	p, err = svc.Update(ctx, "u1", &models.ProfileDelta{GermanLevel: strp("B1")})
	require.NoError(t, err)
	assert.Equal(t, "Kenyan", p.Nationality)
	assert.Equal(t, "B1", p.GermanLevel)
	assert.Equal(t, []string{"Berlin"}, p.PreferredCities)
}

func strp(s string) *string { return &s }
