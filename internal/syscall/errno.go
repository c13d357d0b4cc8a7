// Package syscall implements the kernel's closed cognitive syscall set: the
// sole entry point by which a process performs cognitive work. Every call
// takes the caller's PID first and returns a uniform result record.
package syscall

// Errno is the closed set of failure codes a syscall can report.
type Errno string

const (
	// No error; the call succeeded.
	OK Errno = ""
	// ESRCH: no such process.
	ESRCH Errno = "ESRCH"
	// ENOSYS: unknown syscall. Unreachable via Dispatch (the exhaustive
	// match over the closed syscall set); only DispatchByName, the
	// debug/loose entry point, can produce it.
	ENOSYS Errno = "ENOSYS"
	// EINVAL: bad argument.
	EINVAL Errno = "EINVAL"
	// ENOENT: target not found.
	ENOENT Errno = "ENOENT"
)
