package main

import (
	"log"

	"github.com/echoflow-solutions/carescribe-api/config"
	"github.com/echoflow-solutions/carescribe-api/db"
	"github.com/echoflow-solutions/carescribe-api/mailingservices"
	"github.com/echoflow-solutions/carescribe-api/server"
	"github.com/echoflow-solutions/carescribe-api/services"
	"github.com/echoflow-solutions/carescribe-api/services/ai"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init(conf)

	gormDB := db.GetDB(conf)
	if err := db.SeedRoles(gormDB.DB); err != nil {
		log.Fatalf("error seeding roles: %v", err)
	}
	snapshots, err := db.NewSnapshotStore(conf.SnapshotDir)
	if err != nil {
		log.Fatalf("error opening snapshot store: %v", err)
	}

	authRepo := db.NewAuthRepo(gormDB)
	draftRepo := db.NewDraftReportRepo(gormDB)
	incidentReportRepo := db.NewIncidentReportRepo(gormDB)
	participantRepo := db.NewParticipantRepo(gormDB)
	medicationRepo := db.NewMedicationRepo(gormDB)
	shiftRepo := db.NewShiftRepo(gormDB)
	waitlistRepo := db.NewWaitlistRepo(gormDB)
	mediaRepo := db.NewMediaRepo()

	aiClient := ai.NewClient(conf)

	authService := services.NewAuthService(authRepo, mailgunClient, conf)
	draftService := services.NewDraftService(draftRepo, snapshots, gormDB, conf)
	autosave := services.NewAutosaveManager(draftService, gormDB)
	conversationService := services.NewConversationService(aiClient, conf)
	transcriptionService := services.NewTranscriptionService(aiClient, conversationService, mediaRepo, conf)
	incidentReportService := services.NewIncidentReportService(incidentReportRepo, conf)
	mediaService := services.NewMediaService(mediaRepo, conf)
	participantService := services.NewParticipantService(participantRepo)
	medicationService := services.NewMedicationService(medicationRepo)
	shiftService := services.NewShiftService(shiftRepo, authRepo)
	waitlistService := services.NewWaitlistService(waitlistRepo, mailgunClient)

	s := &server.Server{
		Config:                conf,
		DB:                    *gormDB,
		AuthRepository:        authRepo,
		AuthService:           authService,
		DraftService:          draftService,
		AutosaveManager:       autosave,
		ConversationService:   conversationService,
		TranscriptionService:  transcriptionService,
		IncidentReportService: incidentReportService,
		MediaService:          mediaService,
		ParticipantService:    participantService,
		MedicationService:     medicationService,
		ShiftService:          shiftService,
		WaitlistService:       waitlistService,
	}

	s.Start()
}
