package domain

import "sort"

// Kind tags the variant carried by a Task.
type Kind int

const (
	KindCompile Kind = iota + 1
	KindIntegration
	KindAuth
)

func (k Kind) String() string {
	switch k {
	case KindCompile:
		return "compile"
	case KindIntegration:
		return "integration"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

const OptionExecTimeoutSecs = "exec_timeout_secs"

// Options holds extra scalar task settings emitted next to name and tags.
type Options map[string]any

func (o Options) Clone() Options {
	if o == nil {
		return Options{}
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// TagSet is an unordered, deduplicated set of tags.
type TagSet map[string]struct{}

func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	set.Add(tags...)
	return set
}

func (s TagSet) Add(tags ...string) {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		s[tag] = struct{}{}
	}
}

func (s TagSet) Has(tags ...string) bool {
	for _, tag := range tags {
		if _, ok := s[tag]; ok {
			return true
		}
	}
	return false
}

func (s TagSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for tag := range s {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Task is a closed union over the compile, integration and auth families.
// Exactly one of Compile, Integration or Auth is set, matching Kind. Name,
// Tags, DependsOn and Options are filled in once by derivation.
type Task struct {
	Kind        Kind
	Name        string
	Compile     *CompileTask
	Integration *IntegrationTask
	Auth        *AuthTask

	Tags      TagSet
	DependsOn []string
	Options   Options
}

func NewIntegration(t IntegrationTask) Task {
	return Task{Kind: KindIntegration, Integration: &t, Tags: TagSet{}, Options: Options{}}
}

func NewAuth(t AuthTask) Task {
	return Task{Kind: KindAuth, Auth: &t, Tags: TagSet{}, Options: Options{}}
}

func NewCompile(t CompileTask) Task {
	return Task{Kind: KindCompile, Name: t.Name, Compile: &t, Tags: TagSet{}, Options: Options{}}
}

// ExecTimeoutSecs reports the exec timeout override, if any.
func (t Task) ExecTimeoutSecs() (int, bool) {
	v, ok := t.Options[OptionExecTimeoutSecs]
	if !ok {
		return 0, false
	}
	secs, ok := v.(int)
	return secs, ok
}
