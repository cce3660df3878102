package push

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/dispatch/domain"
)

type fakeSubs struct {
	rows map[string]domain.PushSubscription
	err  error
}

func key(userID, endpoint string) string { return userID + "|" + endpoint }

func (f *fakeSubs) Upsert(_ context.Context, sub *domain.PushSubscription) error {
	if f.err != nil {
		return f.err
	}
	f.rows[key(sub.UserID, sub.Endpoint)] = *sub
	return nil
}

func (f *fakeSubs) Delete(_ context.Context, userID, endpoint string) error {
	delete(f.rows, key(userID, endpoint))
	return f.err
}

func (f *fakeSubs) ListForUser(_ context.Context, userID string) ([]domain.PushSubscription, error) {
	var out []domain.PushSubscription
	for _, s := range f.rows {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, f.err
}

type fakeProfiles struct{ known map[string]bool }

func (f fakeProfiles) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	if !f.known[id] {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.Profile{ID: id, Role: domain.RoleDriver}, nil
}

func (fakeProfiles) ListByRole(context.Context, string) ([]domain.Profile, error) { return nil, nil }
func (fakeProfiles) Upsert(context.Context, *domain.Profile) error                 { return nil }

func setup() (*UseCase, *fakeSubs) {
	subs := &fakeSubs{rows: map[string]domain.PushSubscription{}}
	return New(subs, fakeProfiles{known: map[string]bool{"d1": true}}, nil), subs
}

func TestSubscribeUpserts(t *testing.T) {
	uc, subs := setup()
	ctx := context.Background()

	_, err := uc.Subscribe(ctx, "d1", "https://push.example/1", domain.PushKeys{P256dh: "a", Auth: "b"})
	require.NoError(t, err)
	sub, err := uc.Subscribe(ctx, "d1", " https://push.example/1 ", domain.PushKeys{P256dh: "c", Auth: "d"})
	require.NoError(t, err)

	assert.Equal(t, "https://push.example/1", sub.Endpoint)
	require.Len(t, subs.rows, 1)
	assert.Equal(t, "c", subs.rows[key("d1", "https://push.example/1")].Keys.P256dh)
	assert.False(t, sub.UpdatedAt.IsZero())
}

func TestSubscribeValidation(t *testing.T) {
	uc, _ := setup()
	_, err := uc.Subscribe(context.Background(), "d1", "", domain.PushKeys{Auth: "b"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "endpoint")
	assert.Contains(t, verr.Fields, "keys.p256dh")
	assert.NotContains(t, verr.Fields, "keys.auth")
}

func TestSubscribeUnknownProfile(t *testing.T) {
	uc, subs := setup()
	_, err := uc.Subscribe(context.Background(), "ghost", "https://push.example/1", domain.PushKeys{P256dh: "a", Auth: "b"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
	assert.Empty(t, subs.rows)
}

func TestSubscribeStoreDown(t *testing.T) {
	uc, subs := setup()
	subs.err = &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}
	_, err := uc.Subscribe(context.Background(), "d1", "https://push.example/1", domain.PushKeys{P256dh: "a", Auth: "b"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnavailable))
}

func TestUnsubscribe(t *testing.T) {
	uc, subs := setup()
	ctx := context.Background()
	_, err := uc.Subscribe(ctx, "d1", "https://push.example/1", domain.PushKeys{P256dh: "a", Auth: "b"})
	require.NoError(t, err)

	require.NoError(t, uc.Unsubscribe(ctx, "d1", "https://push.example/1"))
	assert.Empty(t, subs.rows)
	require.NoError(t, uc.Unsubscribe(ctx, "d1", "https://push.example/unknown"))

	err = uc.Unsubscribe(ctx, "d1", " ")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
