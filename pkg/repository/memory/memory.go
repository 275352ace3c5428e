package memory

import (
	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
)

// Memory is an in-memory Repository implementation used for local runs
// and tests.
type Memory struct {
	guideline   *guidelineRepository
	fact        *factRepository
	memoryStore *memoryStoreRepository
	focus       *focusRepository
	taskBrief   *taskBriefRepository
	interaction *interactionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		guideline:   newGuidelineRepository(),
		fact:        newFactRepository(),
		memoryStore: newMemoryStoreRepository(),
		focus:       newFocusRepository(),
		taskBrief:   newTaskBriefRepository(),
		interaction: newInteractionRepository(),
	}
}

func (m *Memory) Guideline() interfaces.GuidelineRepository {
	return m.guideline
}

func (m *Memory) Fact() interfaces.FactRepository {
	return m.fact
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memoryStore
}

func (m *Memory) Focus() interfaces.FocusRepository {
	return m.focus
}

func (m *Memory) TaskBrief() interfaces.TaskBriefRepository {
	return m.taskBrief
}

func (m *Memory) Interaction() interfaces.InteractionRepository {
	return m.interaction
}

func (m *Memory) Close() error {
	return nil
}
