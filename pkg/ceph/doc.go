// Package ceph provides the control-plane handle used during collection.
//
// The handle drives the ceph CLI through an executor.Runner rather than
// linking librados, so the same code path serves a cluster node and a Rook
// toolbox pod. Connect reads ceph.conf (gopkg.in/ini.v1), logs the monitors it
// names, and probes the cluster for its fsid; failure there aborts the run.
//
//	client, err := ceph.Connect(ctx, runner, ceph.Config{
//	    ConfigPath: "/etc/ceph/ceph.conf",
//	    Logger:     logger,
//	})
//	if err != nil {
//	    return err
//	}
//	out, err := client.Issue(ctx, "osd tree", 10*time.Second)
//	switch errors.CodeOf(err) {
//	case errors.ErrCodeUnsupported:
//	    // older release without this command
//	case errors.ErrCodeTimeout:
//	    // cluster did not answer in time
//	}
//
// Issue classifies failures into pkg/errors codes; the collector never
// inspects stderr text itself.
package ceph
