package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"

	"github.com/birdlab-tech/building-analytics/common"
)

const (
	envFile         = "./.env"
	envInfluxToken  = "INFLUX_TOKEN"
	measurementName = "bms_point"
	progressEvery   = 100
)

// appVersion should be populated at build time using ldflags
var appVersion = "undefined"

type demoSensor struct {
	label    string
	minValue float64
	maxValue float64
}

var (
	helpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("seeder")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name:  "log-level",
		Usage: "This flag specifies the logger `level(s)`.",
		Value: "*:" + logger.LogInfo.String(),
	}
	influxURL = cli.StringFlag{
		Name:  "influx-url",
		Usage: "The `URL` of the InfluxDB instance to seed.",
		Value: "http://localhost:8086",
	}
	influxOrg = cli.StringFlag{
		Name:  "influx-org",
		Usage: "The InfluxDB `organization`.",
		Value: "birdlab",
	}
	influxBucket = cli.StringFlag{
		Name:  "influx-bucket",
		Usage: "The InfluxDB `bucket` the demo readings are written into.",
		Value: "bms",
	}
	installationID = cli.StringFlag{
		Name:  "installation-id",
		Usage: "The installation `identifier` stamped on every demo reading.",
		Value: "demo-building",
	}
	hoursOfData = cli.UintFlag{
		Name:  "hours",
		Usage: "How many `hours` of history to generate, ending now.",
		Value: 48,
	}
	stepInMinutes = cli.UintFlag{
		Name:  "step",
		Usage: "The gap in `minutes` between two consecutive readings of the same sensor.",
		Value: 5,
	}

	demoSensors = []demoSensor{
		{label: "ChW Sec Pump1 Speed", minValue: 50, maxValue: 100},
		{label: "ChW Sec Pump2 Speed", minValue: 30, maxValue: 80},
		{label: "LPHW Sec Pump1 Speed", minValue: 40, maxValue: 90},
		{label: "AHU1 Supply Air Temp", minValue: 18, maxValue: 24},
		{label: "Outside Temperature", minValue: 5, maxValue: 15},
		{label: "Boiler Flow Temp", minValue: 60, maxValue: 80},
	}

	envFileContents = map[string]string{
		envInfluxToken: "",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = helpTemplate
	app.Name = "BMS demo data seeder"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "Writes hours of synthetic sensor readings straight to InfluxDB so dashboards " +
		"can be exercised without a live building management system"
	app.Flags = []cli.Flag{
		logLevel,
		influxURL,
		influxOrg,
		influxBucket,
		installationID,
		hoursOfData,
		stepInMinutes,
	}
	app.Authors = []cli.Author{
		{
			Name: "Birdlab",
		},
	}

	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	err = common.ReadEnvFile(envFile, envFileContents)
	if err != nil {
		return err
	}

	hours := ctx.GlobalUint(hoursOfData.Name)
	step := ctx.GlobalUint(stepInMinutes.Name)
	if hours == 0 || step == 0 {
		return fmt.Errorf("hours and step must both be greater than 0")
	}

	client := influxdb2.NewClient(ctx.GlobalString(influxURL.Name), envFileContents[envInfluxToken])
	defer client.Close()

	writeAPI := client.WriteAPIBlocking(ctx.GlobalString(influxOrg.Name), ctx.GlobalString(influxBucket.Name))
	installation := ctx.GlobalString(installationID.Name)

	numSteps := int(hours * 60 / step)
	startTime := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)

	log.Info("generating demo data",
		"hours", hours,
		"step in minutes", step,
		"readings", numSteps*len(demoSensors),
		"installation", installation,
	)

	for i := 0; i < numSteps; i++ {
		timestamp := startTime.Add(time.Duration(i) * time.Duration(step) * time.Minute)
		for _, sensor := range demoSensors {
			value := (sensor.minValue+sensor.maxValue)/2 + rand.Float64()*20 - 10
			point := write.NewPoint(
				measurementName,
				map[string]string{
					"label":           sensor.label,
					"installation_id": installation,
				},
				map[string]interface{}{
					"value": value,
				},
				timestamp,
			)

			err = writeAPI.WritePoint(context.Background(), point)
			if err != nil {
				return fmt.Errorf("%w while writing demo reading for %s", err, sensor.label)
			}
		}

		if (i+1)%progressEvery == 0 {
			log.Info("progress", "written steps", i+1, "total steps", numSteps)
		}
	}

	log.Info("demo data complete")

	return nil
}
