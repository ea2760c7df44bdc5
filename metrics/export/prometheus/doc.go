// Package prometheus renders authsession metrics in Prometheus text exposition format.
//
// [NewExporter] takes any [Source] (normally *authsession.Manager) and exposes an
// [http.Handler]. Counter names are authsession_*_total; the login latency histogram is
// authsession_login_latency_seconds and is only rendered when latency histograms are
// enabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate session state.
package prometheus
