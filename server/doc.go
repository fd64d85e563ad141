// Package server exposes feature extraction, projection and the
// single-series view over HTTP with gin.
//
// # Routes
//
//	GET  /healthz
//	POST /v1/features          multipart file; ?period=&fill=
//	POST /v1/projections       JSON ProjectionRequest
//	POST /v1/analyze           multipart file; ?period=&fill=&algorithms=&k=&selected=
//	POST /v1/series/describe   multipart file; ?id=&period=&lags=
//
// Uploads are .csv or .xlsx tables in long (unique_id, ds, y) or wide
// format. Failures return an ErrorResponse: invalid parameters and
// non-numeric input map to 400, unknown file formats to 415, oversized
// bodies to 413 and reduction timeouts to 504.
//
// # Usage
//
//	srv := server.New(cfg, analyzer, logger.Sugar())
//	if err := srv.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Every response carries an X-Request-ID header, echoed from the request
// when present.
package server
