package repository

// WorkflowRepository is the interface for persisting the cycle/stage/step hierarchy, batches,
// job configurations and jobs. It embeds smaller repository interfaces to separate concerns.
//
// Every method joins the transaction carried by ctx, if any.
type WorkflowRepository interface {
	CycleRepository
	ConfigurationRepository
	BatchRepository
	JobConfigurationRepository
	JobRepository

	// Close releases resources used by the repository.
	Close() error
}
