// Package schemas embeds the JSON Schemas for the files the application reads and writes.
package schemas

import _ "embed"

// JobAdvertFile is the file name of the job advert record schema
const JobAdvertFile = "job_advert.schema.json"

// JobAdvert is the JSON Schema of an exported job advert record
//
//go:embed job_advert.schema.json
var JobAdvert string
