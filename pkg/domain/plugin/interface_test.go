package plugin

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/porter/pkg/domain/conversion"
	"github.com/felixgeelhaar/porter/pkg/domain/generate"
)

type fakeProducer struct {
	initConfig map[string]string
	lastUnit   conversion.Unit
	lastMode   generate.Mode
	out        []byte
	err        error
}

func (f *fakeProducer) Init(config map[string]string) error {
	f.initConfig = config
	return nil
}

func (f *fakeProducer) Produce(unit conversion.Unit, genCtx generate.Context, mode generate.Mode) ([]byte, error) {
	f.lastUnit = unit
	f.lastMode = mode
	return f.out, f.err
}

func TestProducerRPCServerProduce(t *testing.T) {
	impl := &fakeProducer{out: []byte("---\n")}
	server := &ProducerRPCServer{Impl: impl}

	args := &ProduceArgs{
		Unit: conversion.Unit{TargetPath: "tasks/main.yml", Technology: conversion.TechChef},
		Mode: generate.ModeCreate,
	}

	var resp []byte
	if err := server.Produce(args, &resp); err != nil {
		t.Fatalf("Produce: %v", err)
	}
	if string(resp) != "---\n" {
		t.Errorf("resp = %q", resp)
	}
	if impl.lastUnit.TargetPath != "tasks/main.yml" {
		t.Errorf("unit not forwarded: %+v", impl.lastUnit)
	}
	if impl.lastMode != generate.ModeCreate {
		t.Errorf("mode = %s, want create", impl.lastMode)
	}
}

func TestProducerRPCServerProduceError(t *testing.T) {
	impl := &fakeProducer{err: errors.New("rate limited")}
	server := &ProducerRPCServer{Impl: impl}

	var resp []byte
	if err := server.Produce(&ProduceArgs{}, &resp); err == nil {
		t.Fatal("expected error to propagate")
	}
	if len(resp) != 0 {
		t.Errorf("resp should stay empty on error, got %q", resp)
	}
}

func TestProducerRPCServerInit(t *testing.T) {
	impl := &fakeProducer{}
	server := &ProducerRPCServer{Impl: impl}

	var resp interface{}
	if err := server.Init(map[string]string{"model": "llama3"}, &resp); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if impl.initConfig["model"] != "llama3" {
		t.Errorf("config not forwarded: %v", impl.initConfig)
	}
}
