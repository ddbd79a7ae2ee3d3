// Package loader reads JSON files produced by a collection run, tolerating
// the non-standard numbers Ceph writes.
//
// Ceph JSON dumps may contain bare inf, -inf and nan values. Load rewrites
// the forms followed by a comma and parses the result with fastjson, so
// they surface as math.Inf(1), math.Inf(-1) and math.NaN().
//
//	doc, err := loader.LoadReport("")  // $CEPH_DIAGNOSTICS_COLLECT_DIR/cluster_health-report
//	if err != nil {
//	    return err
//	}
//	status, _ := doc.String("health", "status")
//
// WithTrim additionally strips log lines printed before or after the
// document. WithExitOnError is for command-line viewers that cannot
// continue without their input.
package loader
