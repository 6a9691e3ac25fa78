package model

type ServiceConnection struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`
}
