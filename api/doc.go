// Package api contains the HTTP surface served by `jsage serve`.
//
// # Endpoints
//
//	POST /api/v1/schemas/generate   {description, title, schema_description, required, additional_properties}
//	POST /api/v1/schemas/convert    {json, include_examples, enhance, description}
//	POST /api/v1/schemas/check      {schema}
//	POST /api/v1/validate           {data, schema}
//	GET  /health, /healthz, /ready, /version
//
// Prometheus metrics are served on a separate port at /metrics.
//
// # Authentication
//
// When server.api_keys is configured, API routes require the X-API-Key header
// (or Authorization: Bearer). Health endpoints are always public.
package api
