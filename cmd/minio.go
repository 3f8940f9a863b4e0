package cmd

import (
	"context"
	"fmt"
	"log"

	"musewave/config"
	"musewave/storage"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the MinIO connection and list bucket objects",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO config: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		fmt.Println("Connected to MinIO.")

		client := storage.GetMinioClient()
		objects := client.ListObjects(context.Background(), cfg.MinioBucket, minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		})

		var count int
		var total int64
		for object := range objects {
			if object.Err != nil {
				log.Fatalf("Failed to list objects: %v", object.Err)
			}
			fmt.Printf("%10d  %s\n", object.Size, object.Key)
			count++
			total += object.Size
		}
		fmt.Printf("%d objects, %d bytes total\n", count, total)
	},
}

func init() {
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "only list objects under this prefix")
	rootCmd.AddCommand(minioCmd)
}
