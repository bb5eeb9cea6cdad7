// Package config loads, resolves and watches the exporter configuration.
//
// Top-level types:
//   - Config: listen_address, metrics_path, namespace, target, scrape, log
//   - TargetConfig: fallback address/username, password_env, scheme, timeout,
//     insecure_skip_verify; Password() resolves from the environment
//   - Target: the resolved scheme/address/credentials for one collection pass
//
// Load(path) reads the YAML file, applies defaults (:9110, /metrics, netapp
// namespace, https, 10s timeout, TLS verification off), then validates enums.
// An empty path yields the defaults.
//
// ResolveTarget picks each parameter from the first source that has it:
// request override, ONTAP_IP/ONTAP_USER/ONTAP_PASS, config file, fallback.
//
// Watch(ctx, path, onChange) uses fsnotify on the parent directory so that
// rename-based saves are picked up.
package config
