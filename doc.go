// Package yowsl implements an idiomatic interface to manage the distros of the
// Windows Subsystem for Linux from Go. Every operation is a call into the
// host's native management library, wslapi.dll, which is loaded at runtime.
//
// Native strings, out-parameters and the buffers that the library hands back
// are handled here: callers only deal with Go strings, typed flags and a
// Configuration value that holds no native memory.
//
// This package also contains a mock WSL backend which can be useful for testing,
// as registering WSL distros for every test-case can be quite time-consuming.
// This mock back-end is only available with the yowslmock build tag, and is
// enabled by passing the context returned by the WithMock function to New.
package yowsl
