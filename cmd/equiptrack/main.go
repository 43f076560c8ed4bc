package main

import (
	"context"

	"equiptrack/internal/compress"
	"equiptrack/internal/config"
	"equiptrack/internal/db"
	"equiptrack/internal/filestore"
	"equiptrack/internal/handlers"
	"equiptrack/internal/router"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		panic(err)
	}

	database, err := db.NewDatabase(conf.DatabaseDSN)
	if err != nil {
		panic(err)
	}
	defer database.Close()

	files, err := filestore.New(&conf.FileStore)
	if err != nil {
		panic(err)
	}
	if err := files.EnsureBucket(context.Background()); err != nil {
		panic(err)
	}

	handlerSet := handlers.NewHandlerSet(conf.Secret, conf.AuthCookieExpiresIn, database, files)

	r := router.NewRouter(conf, handlerSet, compress.RequestUngzipper{})

	err = r.ListenAndServe()
	if err != nil {
		panic(err)
	}

}
