package main

import (
	"flag"

	"foodie/config"
	"foodie/jwt"
	"foodie/routers"
	"foodie/seed"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	seedPath := flag.String("seed", "", "seed the database from a JSON file and continue")
	flag.Parse()

	conf, err := config.LoadConfig(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	jwt.Init(conf.Server.JWTSecret)

	db, err := config.SetupMySQLConnection(conf)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to the database")
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	rdb, err := config.SetupRedisConnection(conf)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to redis")
	}
	defer rdb.Close()

	if *seedPath != "" {
		data, err := seed.LoadFile(*seedPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to read seed file")
		}
		if err := seed.Apply(db, data); err != nil {
			logrus.WithError(err).Fatal("failed to seed the database")
		}
		logrus.WithField("path", *seedPath).Info("database seeded successfully")
	}

	router := routers.SetupRouters(db, rdb, conf)
	if err := router.Run(conf.Server.Addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
