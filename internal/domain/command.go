package domain

// Command is one step of a task's command list: either a call to a named
// function (Func) or a built-in command such as shell.exec.
type Command struct {
	Func    string
	Command string
	Type    string
	Vars    []Var
	Params  *ShellParams
}

// Var keeps function variables in declaration order.
type Var struct {
	Name  string
	Value string
}

type ShellParams struct {
	WorkingDir    string
	Script        string
	ContinueOnErr bool
}

func FuncCall(name string, vars ...Var) Command {
	return Command{Func: name, Vars: vars}
}
