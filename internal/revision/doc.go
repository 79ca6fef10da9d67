// Package revision reads best-effort version-control metadata (abbreviated
// revision hash and last commit date) for the site footer.
//
// Two Reader backends exist:
//   - GitCLI shells out to the git binary (rev-parse --short HEAD and
//     log -1 --date=short), each query bounded by a timeout.
//   - GoGit reads the repository in-process with go-git.
//
// A Resolver wraps either backend in a single fallback boundary. The two
// queries form one atomic attempt: if either fails, both values become
// "unknown". Nothing in this package returns an error to its caller.
package revision
