package shell

import "io"

//go:generate go run ../cmd/proxygen -config proxygen.toml

// CommandProcessor is the local view of a command shell service. Services
// usually come from another module boundary and are bridged to it.
type CommandProcessor interface {
	CreateSession(in io.Reader, out, err io.Writer) CommandSession
}

// CommandSession executes command lines.
type CommandSession interface {
	Execute(commandline string) (any, error)
	Close()
}
