package config

import "time"

type Config struct {
	Storage  Storage
	Box      Box
	Google   Google
	Workbook Workbook
	Cars     []Car
}

type Storage struct {
	Provider string
	Timeout  time.Duration
}

type Box struct {
	ClientId     string
	ClientSecret string
	EnterpriseId string
	Urls         Url
}

type Url struct {
	TokenUrl string
	ApiUrl   string
}

type Google struct {
	Credentials string
}

type Workbook struct {
	Sheet       string
	KeyColumn   string
	ValueColumn string
}

type Car struct {
	Name   string
	FileId string
}
