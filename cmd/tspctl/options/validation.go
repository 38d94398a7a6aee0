package options

import (
	"k8s.io/apimachinery/pkg/util/sets"
	"k8s.io/apimachinery/pkg/util/validation/field"
	"net/url"
	"strings"
	"time"
)

var (
	supportedBackends = sets.NewString(BackendTablestore, BackendDynamoDB)
	supportedOutputs  = sets.NewString(OutputJSON, OutputYAML)
)

func Validate(o *Options) []error {
	var errs []error
	if err := o.BaseOptions.ValidateAndApply(); err != nil {
		errs = append(errs, err)
	}

	for _, err := range validateOptions(o) {
		errs = append(errs, err)
	}
	return errs
}

func validateOptions(o *Options) field.ErrorList {
	var allErrs field.ErrorList

	if len(strings.TrimSpace(o.GatewayURL)) == 0 {
		allErrs = append(allErrs, field.Required(field.NewPath("gatewayURL"), "set --gateway-url or $"+EnvGatewayURL))
	} else if u, err := url.Parse(o.GatewayURL); err != nil || !u.IsAbs() || len(u.Host) == 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("gatewayURL"), o.GatewayURL, "must be an absolute http(s) URL"))
	}
	if len(strings.TrimSpace(o.Token)) == 0 {
		allErrs = append(allErrs, field.Required(field.NewPath("token"), "set --token or $"+EnvToken))
	}
	if o.Timeout.Duration < 0 {
		allErrs = append(allErrs, field.Invalid(field.NewPath("timeout"), o.Timeout.Duration.String(), "must not be negative"))
	}
	if len(o.Timezone) > 0 {
		if _, err := time.LoadLocation(o.Timezone); err != nil {
			allErrs = append(allErrs, field.Invalid(field.NewPath("timezone"), o.Timezone, err.Error()))
		}
	}
	if !supportedOutputs.Has(o.Output) {
		allErrs = append(allErrs, field.NotSupported(field.NewPath("output"), o.Output, supportedOutputs.List()))
	}

	storePath := field.NewPath("store")
	if !supportedBackends.Has(o.Store.Backend) {
		allErrs = append(allErrs, field.NotSupported(storePath.Child("backend"), o.Store.Backend, supportedBackends.List()))
	}
	if o.Store.Backend == BackendTablestore && len(o.Store.Endpoint) > 0 {
		if len(o.Store.InstanceName) == 0 {
			allErrs = append(allErrs, field.Required(storePath.Child("instanceName"), "required with a tablestore endpoint"))
		}
		if len(o.Store.AccessKey) == 0 || len(o.Store.AccessSecret) == 0 {
			allErrs = append(allErrs, field.Required(storePath.Child("accessKey"), "tablestore needs an access key and secret"))
		}
	}
	return allErrs
}
