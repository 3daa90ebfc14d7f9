// Package api talks to the tax return REST backend. Client carries the
// session cookies and attaches the CSRF header to every mutating request;
// the service types wrap the onboarding, expense and upload endpoints.
//
// Every non-2xx response is returned as a *submit.RequestError so callers can
// feed it straight into a wizard or manager error state.
package api
