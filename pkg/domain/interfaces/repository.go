package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Guideline() GuidelineRepository
	Fact() FactRepository
	Memory() MemoryRepository
	Focus() FocusRepository
	TaskBrief() TaskBriefRepository
	Interaction() InteractionRepository

	Close() error
}
