// Package k8s groups the Kubernetes integrations of ceph-collect.
//
// # Sub-packages
//
// toolbox: runs collection commands inside the Rook Ceph toolbox pod
//
//	client, config, err := toolbox.BuildKubeClient(kubeconfig)
//	if err != nil {
//	    return err
//	}
//	pod, err := toolbox.FindPod(ctx, client, "rook-ceph", "app=rook-ceph-tools")
//	if err != nil {
//	    return err
//	}
//	runner := &toolbox.PodRunner{
//	    RESTClient: client.CoreV1().RESTClient(),
//	    Config:     config,
//	    Namespace:  pod.Namespace,
//	    Pod:        pod.Name,
//	}
//
// The runner satisfies executor.Runner, so the collector issues the same
// command lines on a host and in a Rook cluster.
//
// # Authentication
//
// BuildKubeClient tries, in order: the given kubeconfig path, KUBECONFIG,
// ~/.kube/config, then in-cluster service account credentials.
package k8s
