package profile

import "simjudge/internal/sandbox/spec"

// TaskType identifies the sandbox task category.
type TaskType string

const (
	TaskTypeCompile    TaskType = "compile"
	TaskTypeRun        TaskType = "run"
	TaskTypeChecker    TaskType = "checker"
	TaskTypeInteractor TaskType = "interactor"
	TaskTypeLint       TaskType = "lint"
)

// TaskProfile defines sandbox resources and security settings for a task type.
type TaskProfile struct {
	LanguageID     string
	TaskType       TaskType
	RootFS         string
	SeccompProfile string
	DefaultLimits  spec.ResourceLimit
}

// Lookup finds the first entry in profiles matching taskType whose
// LanguageID is either languageID or empty (an empty LanguageID declares
// a default that applies across every language for that task type, used
// for task types like the checker that don't vary by the contestant's
// own submission language). Entries are matched in slice order, so a
// language-specific override should be listed ahead of the blanket one.
func Lookup(profiles []TaskProfile, languageID string, taskType TaskType) (TaskProfile, bool) {
	for _, p := range profiles {
		if p.TaskType != taskType {
			continue
		}
		if p.LanguageID == languageID || p.LanguageID == "" {
			return p, true
		}
	}
	return TaskProfile{}, false
}
