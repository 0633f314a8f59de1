package jobs

type JobType string

const (
	JobUserWelcome  JobType = "user.welcome"
	JobRepairStatus JobType = "repair.status"
)

// check to see if the job type is a known constant

func (t JobType) IsValid() bool {
	switch t {
	case JobUserWelcome, JobRepairStatus:
		return true
	default:
		return false
	}
}
