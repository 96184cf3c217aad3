// Package startup handles application initialization: environment
// configuration with .env support, the startup banner and structured
// phase logging, build information, and route listing for debug output.
//
// Configuration is environment-first. Every knob has a default that
// works out of the box; LoadConfig logs the resolved values so a
// misconfigured deployment is visible in the first screen of output.
package startup
