package main

import (
	"context"
	"fmt"
	"time"

	"github.com/un000/tailsafe"
)

func main() {
	f := tailsafe.NewFollower(
		"./github.com_access.log",
		tailsafe.WithFollowFromStart(),
		tailsafe.WithFollowInterval(10*time.Millisecond),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := f.Run(ctx)
	if err != nil {
		panic(err)
	}

	fmt.Println("Following file:", f.FileName())
	for {
		select {
		case line, ok := <-f.Lines():
			if !ok {
				return
			}

			fmt.Println(line.Text())
		case err, ok := <-f.Errors():
			if !ok {
				return
			}

			panic(err)
		}
	}
}
