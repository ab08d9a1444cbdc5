package diag

import "mauicli/internal/check"

// Process exit codes
const (
	ExitSuccess             = 0
	ExitGeneralError        = 1
	ExitDownloadFailed      = 2
	ExitApplyFailed         = 3
	ExitInvalidPR           = 4
	ExitProjectNotFound     = 5
	ExitFailedToFindProject = 6
	ExitCancelled           = 7
)

// ExitCode maps check results to the process exit code. Only ERROR records
// fail the run; warnings and not-applicable records never do.
func ExitCode(results []check.Result) int {
	if check.HasErrors(results) {
		return ExitGeneralError
	}
	return ExitSuccess
}
