package config

import (
	"testing"

	"github.com/duocast-cli/duocast/filesystem"
	"github.com/duocast-cli/duocast/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Registry should match the declared schema cardinality", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("playback.load.order")
			So(result, ShouldEqual, "playback_load_order")
		})
	})
}

func TestFieldEnv(t *testing.T) {
	Convey("Field Env", t, func() {
		f := Default[key.RemoteConnectorURL]
		So(f.Env(), ShouldEqual, "DUOCAST_REMOTE_CONNECTOR_URL")
	})
}
