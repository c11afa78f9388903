// Package api receives the transfer types generated for the model package.
package api
