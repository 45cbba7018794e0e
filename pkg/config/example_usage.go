package config

// Example usage of the configuration system:
//
// 1. Load configuration with all sources:
//
//     config, err := config.Load("", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 2. Load with custom config file:
//
//     config, err := config.Load("/path/to/config.yaml", nil)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 3. Load with command line flags:
//
//     flags := map[string]interface{}{
//         "server": "http://192.168.1.10:32400",
//         "token": "xyz789",
//         "output": "./my-photos",
//         "delay": 2 * time.Second,
//         "log-level": "debug",
//     }
//     config, err := config.Load("", flags)
//     if err != nil {
//         log.Fatal(err)
//     }
//
// 4. Programmatic configuration:
//
//     config := config.DefaultConfig()
//     config.Plex.BaseURL = "http://192.168.1.10:32400"
//     config.Plex.Token = "your-plex-token"
//     config.Mirror.Albums = []string{"Holidays", "Family"}
//
//     if err := config.Validate(); err != nil {
//         log.Fatal(err)
//     }
//
// 5. Save configuration to file:
//
//     if err := config.Save(".plexmirror.yaml"); err != nil {
//         log.Fatal(err)
//     }
//
// 6. Environment variables:
//
//     export PLEXMIRROR_BASE_URL="http://192.168.1.10:32400"
//     export PLEXMIRROR_TOKEN="your-plex-token"
//     export PLEXMIRROR_OUTPUT_DIR="./photos"
//     export PLEXMIRROR_ALBUMS="Holidays,Family"
//     export PLEXMIRROR_DOWNLOAD_DELAY="2s"
//     export PLEXMIRROR_REQUESTS_PER_MINUTE="30"
//     export PLEXMIRROR_NOTIFICATIONS_ENABLED="true"
//     export PLEXMIRROR_LOG_LEVEL="debug"
//
// 7. Using configuration in your application:
//
//     // Create Plex client with config
//     client := plex.NewClient(
//         config.Plex.BaseURL,
//         config.Plex.Token,
//         plex.WithTimeout(config.Plex.RequestTimeout),
//     )
//
//     // Set up rate limiter
//     limiter := ratelimit.NewLimiter(
//         config.RateLimit.RequestsPerMinute,
//         config.RateLimit.BurstSize,
//     )
//
//     // Plan and execute a mirror run
//     queue, err := mirror.NewPlanner(client, mapper, cfg, log).Plan(ctx)
