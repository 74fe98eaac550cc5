package notification

import (
	"context"
	"errors"
	"testing"

	"relais/internal/models"
	"relais/internal/repositories/mocks"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, message *messaging.Message) (string, error) {
	args := m.Called(message)
	return args.String(0), args.Error(1)
}

func TestFCM_Notify(t *testing.T) {
	s := new(mockSender)
	s.On("Send", mock.MatchedBy(func(m *messaging.Message) bool {
		return m.Token == "device-1" && m.Notification.Title == "Transaction validated" && m.Data["reference"] == "TX-1"
	})).Return("msg-1", nil)

	n := &FCM{client: s, log: zap.NewNop()}
	user := &models.User{FCMToken: "device-1"}

	err := n.Notify(context.Background(), user, Message{
		Title: "Transaction validated",
		Body:  "Your transaction TX-1 was validated",
		Data:  map[string]string{"reference": "TX-1"},
	})
	assert.NoError(t, err)
	s.AssertExpectations(t)
}

func TestFCM_SkipsUsersWithoutDevice(t *testing.T) {
	s := new(mockSender)
	n := &FCM{client: s, log: zap.NewNop()}

	assert.NoError(t, n.Notify(context.Background(), &models.User{}, Message{Title: "x"}))
	s.AssertNotCalled(t, "Send", mock.Anything)
}

func TestNotifyUser_SwallowsErrors(t *testing.T) {
	store := mocks.NewStore()
	store.UserRepo.On("GetByID", uint(1)).Return(nil, errors.New("db down"))

	NotifyUser(context.Background(), Noop{}, store.UserRepo, zap.NewNop(), 1, Message{Title: "x"})
	store.UserRepo.AssertExpectations(t)
}
