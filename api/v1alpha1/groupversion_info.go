// Package v1alpha1 defines the HotStandbyJob resource of the apps.paia.tech group.
// +kubebuilder:object:generate=true
// +groupName=apps.paia.tech
package v1alpha1

import (
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/scheme"
)

var (
	// GroupVersion identifies HotStandbyJob objects on the API server.
	GroupVersion = schema.GroupVersion{Group: "apps.paia.tech", Version: "v1alpha1"}

	SchemeBuilder = &scheme.Builder{GroupVersion: GroupVersion}

	// AddToScheme registers HotStandbyJob and HotStandbyJobList with a scheme.
	AddToScheme = SchemeBuilder.AddToScheme

	// Scheme knows the pool types plus the built-in Jobs, Pods and Events
	// the operator reads and writes.
	Scheme = runtime.NewScheme()
)

func init() {
	SchemeBuilder.Register(&HotStandbyJob{}, &HotStandbyJobList{})

	utilruntime.Must(clientgoscheme.AddToScheme(Scheme))
	utilruntime.Must(AddToScheme(Scheme))
}
