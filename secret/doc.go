// Package secret resolves secret references in configuration values.
//
// A value is first expanded against the environment (see ExpandEnvStrict).
// A value of the form
//
//	secretref:<provider>:<ref>
//
// is then replaced by what the named Provider returns for ref. References may
// also appear inline, e.g. "Bearer secretref:env:API_TOKEN".
//
// Two providers are built in: EnvProvider ("env") reads environment
// variables, FileProvider ("file") reads mounted secret files.
package secret
