package jobs

type JobType string

const JobContactNotification JobType = "contact_notification"

const QueueDefault = "default"

// Payload is a task body. Its JobType doubles as the asynq task type name.
type Payload interface {
	JobType() JobType
	Validate() error
}
