// Package config loads resumekit configuration.
//
// Values are layered, later layers winning:
//
//  1. built-in defaults (Defaults)
//  2. an optional YAML file, from LoadOptions.Path or $RESUMEKIT_CONFIG
//  3. environment variables prefixed RESUMEKIT_, with "__" separating
//     sections: RESUMEKIT_CACHE__DEFAULT_TTL=10m sets cache.default_ttl
//
// Secret fields (codec passphrase and salt, the analysis token) may hold
// ${VAR} references or secretref:env:NAME / secretref:file:PATH references,
// resolved after loading. Outside production a missing codec passphrase or
// salt falls back to DevPassphrase and DevSalt; in production it is an error.
package config
