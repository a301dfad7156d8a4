package memory

import (
	"github.com/upsight-lab/copilot/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = interfaces.ErrRecordNotFound

// Memory is the in-memory repository backend, used for development mode
// and tests.
type Memory struct {
	records *recordRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		records: newRecordRepository(),
	}
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.records
}

func (m *Memory) Close() error {
	return nil
}
