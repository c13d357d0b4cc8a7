package syscall

// Result is the uniform record every syscall returns: either a success
// carrying Data, or a failure tagged with Errno. Callers must inspect it —
// no error is propagated out of the dispatcher beyond this record.
type Result struct {
	OK    bool
	Errno Errno
	Data  any
}

func ok(data any) Result {
	return Result{OK: true, Data: data}
}

func fail(errno Errno) Result {
	return Result{OK: false, Errno: errno}
}
