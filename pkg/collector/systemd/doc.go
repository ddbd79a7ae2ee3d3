// Package systemd reports the state of Ceph systemd units over D-Bus.
//
// The collector runs it for "units" queries when collecting on a host. Each
// query lists the units matching its glob patterns, sorted by name:
//
//	UNIT                 LOAD    ACTIVE  SUB      DESCRIPTION
//	ceph-mon@a.service   loaded  active  running  Ceph cluster monitor daemon
//	ceph-osd@0.service   loaded  failed  failed   Ceph object storage daemon osd.0
//
// Hosts without a system bus (containers, the Rook toolbox) make ListUnits
// fail with ErrCodeUnavailable; the collector records the item as failed
// and continues.
package systemd
