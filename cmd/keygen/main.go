// Command keygen prints a random secret suitable for AUTHKEEPER_SECRET_KEY.
package main

import (
	"fmt"
	"log"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/config"
)

func main() {
	key, err := common.MakeRandHexString(config.MinSecretKeyLength)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Println(key)
}
