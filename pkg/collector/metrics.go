// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	itemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ceph_collect_items_total",
			Help: "Total number of collected items by category and status",
		},
		[]string{"category", "status"}, // ok, empty, unsupported, timeout, failed
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ceph_collect_run_duration_seconds",
			Help:    "Time taken to collect a complete diagnostic snapshot",
			Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)
)
