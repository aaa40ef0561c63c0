// Package domain holds the record and view types shared by the loader,
// the filter pipeline, the service layer and the transports.
package domain
