package dice_test

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

// MockTransport is a Transport whose transactions are set up with testify expectations.
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Transaction(tcode dice.TransactionCode, addr uint64, frame []byte, timeoutMs int) error {
	args := m.Called(tcode, addr, frame, timeoutMs)

	return args.Error(0)
}

var _ dice.Transport = (*MockTransport)(nil)

// MockLocker is a Locker whose calls are set up with testify expectations.
type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock() error {
	return m.Called().Error(0)
}

func (m *MockLocker) Unlock() error {
	return m.Called().Error(0)
}

var _ dice.Locker = (*MockLocker)(nil)

// transaction is a transaction seen by a recordingTransport.
type transaction struct {
	tcode dice.TransactionCode
	addr  uint64
	data  []byte
}

// recordingTransport forwards transactions and keeps a copy of the writes.
type recordingTransport struct {
	t      dice.Transport
	writes []transaction
	reads  int
}

func (r *recordingTransport) Transaction(tcode dice.TransactionCode, addr uint64, frame []byte, timeoutMs int) error {
	if tcode.IsRead() {
		r.reads++
	} else {
		r.writes = append(r.writes, transaction{tcode, addr, append([]byte(nil), frame...)})
	}

	return r.t.Transaction(tcode, addr, frame, timeoutMs)
}

func (r *recordingTransport) reset() {
	r.writes = nil
	r.reads = 0
}

// simCard opens a card over a simulated unit of the model.
func simCard(t *testing.T, name string) (*dice.SimDevice, dice.Model, *dice.Card) {
	t.Helper()

	sim, err := dice.NewSimDevice(name)
	require.NoError(t, err, "NewSimDevice should succeed for %s", name)

	model, err := dice.NewModelByName(name, sim, dice.WithLocker(sim))
	require.NoError(t, err, "NewModelByName should succeed for %s", name)

	card, err := dice.OpenCard(model, nil)
	require.NoError(t, err, "OpenCard should succeed for %s", name)

	return sim, model, card
}
