// Package dump writes prefetched batches back out as JPEG images, one file
// per slot and stream, for visual inspection of what the consumer receives.
//
// Every display-th call to Writer.Write stores
//
//	<file_name>-it<counter>-batchid<slot>-bottom<stream>.jpg
//
// through the storage client, with each value mapped to
// clamp(v*upscale + mean_to_add, 0, 255). Transformations are per stream;
// streams past the end of the list reuse the last entry. Streams whose
// channel count is neither 1 nor 3 are logged and skipped.
//
// # Configuration
//
//	dump:
//	  enabled: true
//	  file_name: "dumps/batch"
//	  display: 100
//	  transformations:
//	    - upscale: 1
//	      mean_to_add: 128
package dump
